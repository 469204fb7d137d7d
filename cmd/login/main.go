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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"social-wallet-client-go/internal/common"
	"social-wallet-client-go/internal/config"
	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/state"
	"social-wallet-client-go/internal/validation"

	"go.uber.org/zap"
)

type loginFlow struct {
	auth      *state.AuthStore
	prompt    *common.Prompter
	countries []common.Country
	timer     *state.ResendTimer
}

func (f *loginFlow) askPhone() (string, error) {
	def := common.DefaultCountry(f.countries)
	code, err := f.prompt.AskDefault("Country code", def.Code)
	if err != nil {
		return "", err
	}
	country, ok := common.FindCountry(f.countries, code)
	if !ok {
		return "", fmt.Errorf("unsupported country code %s", code)
	}
	local, err := f.prompt.Ask(fmt.Sprintf("Phone number (%s): ", country.Name))
	if err != nil {
		return "", err
	}
	return common.FullPhoneNumber(country, local), nil
}

// requestOtp loops until an OTP was sent.
func (f *loginFlow) requestOtp(ctx context.Context) error {
	for {
		phone, err := f.askPhone()
		if err != nil {
			return err
		}
		if err := f.auth.SendOtp(ctx, phone); err != nil {
			if validation.IsValidationError(err) {
				fmt.Printf("❌ %s\n", err)
				continue
			}
			return err
		}
		fmt.Printf("✅ OTP sent to %s\n", phone)
		f.timer.Start(ctx)
		return nil
	}
}

// verify reads codes until one is accepted. "r" resends once the countdown
// has finished and "c" changes the number.
func (f *loginFlow) verify(ctx context.Context) error {
	for {
		answer, err := f.prompt.Ask("Enter OTP (r = resend, c = change number): ")
		if err != nil {
			return err
		}

		switch strings.ToLower(answer) {
		case "r":
			if !f.timer.CanResend() {
				fmt.Printf("You can resend the code in %ds\n", f.timer.Remaining())
				continue
			}
			phone := f.auth.Snapshot().PhoneNumber
			if err := f.auth.SendOtp(ctx, phone); err != nil {
				fmt.Printf("❌ %s\n", err)
				continue
			}
			fmt.Println("✅ OTP resent")
			f.timer.Start(ctx)
			continue
		case "c":
			f.timer.Stop()
			f.auth.ChangePhoneNumber()
			if err := f.requestOtp(ctx); err != nil {
				return err
			}
			continue
		}

		err = f.auth.VerifyOtp(ctx, "", answer)
		if err == nil {
			f.timer.Stop()
			return nil
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		fmt.Printf("❌ %s\n", err)
	}
}

func (f *loginFlow) register(ctx context.Context) error {
	fmt.Println("\nThis number is not registered yet. Let's create your account.")
	phone := f.auth.Snapshot().PhoneNumber

	for {
		form := models.Registration{Phone: phone}
		var err error
		if form.Name, err = f.prompt.Ask("Name: "); err != nil {
			return err
		}
		if form.Username, err = f.prompt.Ask("Username: "); err != nil {
			return err
		}
		if form.DateOfBirth, err = f.prompt.Ask("Date of birth (YYYY-MM-DD, optional): "); err != nil {
			return err
		}
		if form.Gender, err = f.prompt.Ask("Gender (optional): "); err != nil {
			return err
		}
		if form.Location, err = f.prompt.Ask("Location (optional): "); err != nil {
			return err
		}
		photo, err := f.prompt.Ask("Profile photo path (optional): ")
		if err != nil {
			return err
		}
		if photo != "" {
			upload, err := common.LoadUpload(photo)
			if err != nil {
				fmt.Printf("❌ %s\n", err)
				continue
			}
			form.ProfilePhoto = upload
		}

		if err := f.auth.Register(ctx, form); err != nil {
			if validation.IsValidationError(err) {
				fmt.Printf("❌ %s\n", err)
				continue
			}
			return err
		}
		return nil
	}
}

func printSession(session state.Session) {
	common.PrintHeader("SIGNED IN", common.DefaultWidth)
	if session.User != nil {
		fmt.Printf("User:     %s (@%s)\n", session.User.Name, session.User.Username)
	}
	fmt.Printf("Token:    %s\n", common.MaskToken(session.Token))
	common.PrintSeparator("=", common.DefaultWidth)
}

func main() {
	logout := flag.Bool("logout", false, "Clear the persisted session and exit")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	auth := services.App.Auth

	if *logout {
		auth.Logout()
		fmt.Println("✅ Logged out")
		return
	}

	if auth.Snapshot().Authenticated() {
		if err := auth.FetchMe(ctx); err == nil {
			printSession(auth.Snapshot())
			fmt.Println("Already signed in. Use -logout to switch accounts.")
			return
		}
		var expired *state.SessionExpiredError
		if !errors.As(err, &expired) {
			zap.L().Fatal("Failed to load session user", zap.Error(err))
		}
		fmt.Printf("⚠️  %s\n", expired)
	}

	countries, err := common.LoadCountries(cfg.Auth.CountriesFile)
	if err != nil {
		zap.L().Fatal("Failed to load countries", zap.Error(err))
	}

	flow := &loginFlow{
		auth:      auth,
		prompt:    common.NewPrompter(os.Stdin, os.Stdout),
		countries: countries,
		timer: state.NewResendTimer(cfg.Auth.OtpResendInterval, func(_ int, canResend bool) {
			if canResend {
				zap.L().Debug("OTP resend available")
			}
		}),
	}
	defer flow.timer.Stop()

	if err := flow.requestOtp(ctx); err != nil {
		zap.L().Fatal("Failed to send OTP", zap.Error(err))
	}
	if err := flow.verify(ctx); err != nil {
		zap.L().Fatal("Failed to verify OTP", zap.Error(err))
	}

	if auth.Snapshot().Stage() == state.StageNeedsRegistration {
		if err := flow.register(ctx); err != nil {
			zap.L().Fatal("Registration failed", zap.Error(err))
		}
	}

	session := auth.Snapshot()
	if !session.Authenticated() {
		zap.L().Fatal("Sign-in did not complete", zap.String("error", session.Error))
	}
	printSession(session)
}
