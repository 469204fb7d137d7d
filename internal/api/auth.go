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

package api

import (
	"context"
	"fmt"
	"net/http"

	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/validation"
)

func (c *Client) SendOtp(ctx context.Context, phone string) (*models.MessageResponse, error) {
	cl, err := c.jsonCall("send_otp", http.MethodPost, "/auth/send-otp", "",
		map[string]string{"phone": phone}, "Failed to send OTP")
	if err != nil {
		return nil, err
	}
	var resp models.MessageResponse
	if err := c.doJSON(ctx, cl, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) VerifyOtp(ctx context.Context, phone, otp string) (*models.VerifyOtpResponse, error) {
	cl, err := c.jsonCall("verify_otp", http.MethodPost, "/auth/verify-otp", "",
		map[string]string{"phone": phone, "otp": otp}, "Failed to verify OTP")
	if err != nil {
		return nil, err
	}
	var resp models.VerifyOtpResponse
	if err := c.doJSON(ctx, cl, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, phone string) (*models.AuthResponse, error) {
	cl, err := c.jsonCall("login", http.MethodPost, "/auth/login", "",
		map[string]string{"phone": phone}, "Login failed")
	if err != nil {
		return nil, err
	}
	var resp models.AuthResponse
	if err := c.doJSON(ctx, cl, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register submits the signup form as multipart/form-data with the optional
// profile photo under "profilePhoto".
func (c *Client) Register(ctx context.Context, form models.Registration) (*models.AuthResponse, error) {
	upload := form.ProfilePhoto
	if upload != nil {
		sanitized := *upload
		sanitized.FileName = validation.SanitizeFileName(upload.FileName)
		upload = &sanitized
	}

	body, contentType, err := multipartBody(form.Fields(), "profilePhoto", upload)
	if err != nil {
		return nil, fmt.Errorf("register: encode form: %w", err)
	}

	cl := call{
		op:          "register",
		method:      http.MethodPost,
		path:        "/auth/register",
		body:        body,
		contentType: contentType,
		fallback:    "Registration failed",
	}
	var resp models.AuthResponse
	if err := c.doJSON(ctx, cl, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the user the bearer token belongs to.
func (c *Client) Me(ctx context.Context, token string) (*models.ProfileDetail, error) {
	cl := call{
		op:       "me",
		method:   http.MethodGet,
		path:     "/auth/me",
		token:    token,
		fallback: "Failed to fetch user data",
	}
	var user models.ProfileDetail
	if err := c.doJSON(ctx, cl, &user, "data.user", "data", "user"); err != nil {
		return nil, err
	}
	return &user, nil
}
