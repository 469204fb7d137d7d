/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package common

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter reads answers line by line for the interactive tools.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints question and returns the trimmed answer. A final line without
// a newline is still returned; io.EOF is only reported for empty input.
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return line, nil
}

// AskDefault returns def when the answer is empty.
func (p *Prompter) AskDefault(question, def string) (string, error) {
	answer, err := p.Ask(fmt.Sprintf("%s [%s]: ", question, def))
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm accepts y/yes in any case.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Ask(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
