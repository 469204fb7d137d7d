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

package models

import "time"

// UserSummary is the immutable user snapshot carried by the session
type UserSummary struct {
	Id           string `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	ProfilePhoto string `json:"profilePhoto,omitempty"`
}

func (u *UserSummary) UnmarshalJSON(data []byte) error {
	type plain UserSummary
	mongoId, err := decodeWithId(data, (*plain)(u))
	if err != nil {
		return err
	}
	if u.Id == "" {
		u.Id = mongoId
	}
	return nil
}

// ProfileDetail is the full public profile of a user
type ProfileDetail struct {
	Id            string    `json:"id"`
	Username      string    `json:"username"`
	Name          string    `json:"name"`
	ProfilePhoto  string    `json:"profilePhoto,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	DateOfBirth   string    `json:"dateOfBirth,omitempty"`
	Gender        string    `json:"gender,omitempty"`
	Preference    string    `json:"preference,omitempty"`
	VideoLanguage string    `json:"videoLanguage,omitempty"`
	Location      string    `json:"location,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

func (p *ProfileDetail) UnmarshalJSON(data []byte) error {
	type plain ProfileDetail
	mongoId, err := decodeWithId(data, (*plain)(p))
	if err != nil {
		return err
	}
	if p.Id == "" {
		p.Id = mongoId
	}
	return nil
}

// Summary narrows a profile to the fields kept in the session
func (p ProfileDetail) Summary() UserSummary {
	return UserSummary{
		Id:           p.Id,
		Username:     p.Username,
		Name:         p.Name,
		ProfilePhoto: p.ProfilePhoto,
	}
}

// Upload is an in-memory file attached to a multipart request
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Registration carries the signup form submitted after OTP verification
type Registration struct {
	Phone         string  `validate:"required,phone"`
	Name          string  `validate:"required"`
	Username      string  `validate:"required,username"`
	DateOfBirth   string  `validate:"omitempty,datetime=2006-01-02"`
	Gender        string
	Preference    string
	VideoLanguage string
	Location      string
	ProfilePhoto  *Upload
}

// Fields returns the non-empty text fields in submission order
func (r Registration) Fields() [][2]string {
	all := [][2]string{
		{"name", r.Name},
		{"username", r.Username},
		{"dateOfBirth", r.DateOfBirth},
		{"gender", r.Gender},
		{"preference", r.Preference},
		{"videoLanguage", r.VideoLanguage},
		{"location", r.Location},
		{"phone", r.Phone},
	}
	fields := make([][2]string, 0, len(all))
	for _, f := range all {
		if f[1] != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
