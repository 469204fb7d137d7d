package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"social-wallet-client-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(models.ApiConfig{
		BaseURL:        server.URL + "/api",
		RequestTimeout: 2 * time.Second,
		RateLimit:      1000,
		RateBurst:      100,
	})
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestSendOtpPostsPhone(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/send-otp", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "+919876543210", body["phone"])
		writeJSON(w, http.StatusOK, `{"message":"OTP sent"}`)
	})

	resp, err := client.SendOtp(context.Background(), "+919876543210")
	require.NoError(t, err)
	assert.Equal(t, "OTP sent", resp.Message)
}

func TestRequestErrorUsesServerMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"message":"Invalid OTP"}`)
	})

	_, err := client.VerifyOtp(context.Background(), "+919876543210", "000000")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadRequest, reqErr.Status)
	assert.Equal(t, "Invalid OTP", reqErr.Message)
}

func TestRequestErrorFallbacks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"Phone blocked"}`, "Phone blocked"},
		{"nested error", `{"error":{"message":"Nested"}}`, "Nested"},
		{"empty object", `{}`, "Login failed"},
		{"html body", `<html>bad gateway</html>`, "Login failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadGateway, tt.body)
			})
			_, err := client.Login(context.Background(), "+919876543210")
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestBearerTokenAttached(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"data":{"user":{"_id":"u1","username":"alice","name":"Alice"}}}`)
	})

	user, err := client.Me(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.Id)
	assert.Equal(t, "alice", user.Username)
}

func TestUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"message":"Token expired"}`)
	})

	_, err := client.Me(context.Background(), "stale")
	assert.True(t, IsUnauthorized(err))
}

func TestGetProfileShapes(t *testing.T) {
	bodies := []string{
		`{"data":{"user":{"_id":"p1","username":"bob","bio":"hi"}}}`,
		`{"data":{"_id":"p1","username":"bob","bio":"hi"}}`,
		`{"_id":"p1","username":"bob","bio":"hi"}`,
	}
	for _, body := range bodies {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/users/bob", r.URL.Path)
			writeJSON(w, http.StatusOK, body)
		})
		profile, err := client.GetProfile(context.Background(), "", "bob")
		require.NoError(t, err)
		assert.Equal(t, "p1", profile.Id)
		assert.Equal(t, "hi", profile.Bio)
	}
}

func TestGetWalletDefaultsPaging(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, `{"data":{
			"wallet":{"balance":150.5},
			"history":[{"_id":"t1","type":"payin","transactionType":"recharge","amount":100,"status":"completed","createdAt":"2024-01-02T03:04:05Z"}],
			"pagination":{"page":1,"limit":20,"total":1,"pages":1}}}`)
	})

	page, err := client.GetWallet(context.Background(), "tok", models.PageRequest{})
	require.NoError(t, err)
	assert.True(t, page.Wallet.Balance.Equal(decimal.RequireFromString("150.5")))
	require.Len(t, page.History, 1)
	assert.Equal(t, "t1", page.History[0].Id)
	assert.Equal(t, 1, page.Pagination.Total)
}

func TestAddMoneySendsNumericAmount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"amount":100,"transactionType":"recharge"}`, string(raw))
		writeJSON(w, http.StatusOK, `{"data":{"wallet":{"balance":"250"},"history":{"_id":"t9","type":"payin","transactionType":"recharge","amount":100,"status":"completed"}}}`)
	})

	res, err := client.AddMoney(context.Background(), "tok", models.DepositRequest{Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.True(t, res.Wallet.Balance.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "t9", res.History.Id)
}

func TestWithdrawDecodesRemainingBalance(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			BankDetails models.BankDetails `json:"bankDetails"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "HDFC0001234", body.BankDetails.IfscCode)
		writeJSON(w, http.StatusOK, `{"data":{"remainingBalance":40,"withdrawal":{"_id":"w1","type":"payout","transactionType":"withdrawal","amount":60,"status":"pending"}}}`)
	})

	res, err := client.Withdraw(context.Background(), "tok", models.WithdrawalRequest{
		Amount: decimal.NewFromInt(60),
		BankDetails: models.BankDetails{
			AccountNumber:     "123456789",
			IfscCode:          "HDFC0001234",
			AccountHolderName: "Alice",
		},
	})
	require.NoError(t, err)
	assert.True(t, res.RemainingBalance.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, models.TypePayout, res.Withdrawal.Type)
}

func TestCreateCommunityMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Go Club", r.FormValue("name"))
		assert.Equal(t, "25", r.FormValue("cost"))

		file, header, err := r.FormFile("profile_photo")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "my_photo_1_.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		writeJSON(w, http.StatusCreated, `{"data":{"_id":"c1","name":"Go Club"}}`)
	})

	community, err := client.CreateCommunity(context.Background(), "tok", models.NewCommunity{
		Name: "Go Club",
		Cost: "25",
		ProfilePhoto: &models.Upload{
			FileName:    "my photo(1).png",
			ContentType: "image/png",
			Data:        []byte{0x89, 'P', 'N', 'G'},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", community.Id)
}

func TestRegisterMultipartFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "alice", r.FormValue("username"))
		assert.Equal(t, "+919876543210", r.FormValue("phone"))
		_, _, err := r.FormFile("profilePhoto")
		assert.ErrorIs(t, err, http.ErrMissingFile)
		writeJSON(w, http.StatusCreated, `{"token":"tok","data":{"user":{"_id":"u1","username":"alice"}}}`)
	})

	resp, err := client.Register(context.Background(), models.Registration{
		Phone:    "+919876543210",
		Name:     "Alice",
		Username: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "u1", resp.Data.User.Id)
}

func TestTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	client := newClient(models.ApiConfig{
		BaseURL:        server.URL,
		RequestTimeout: 50 * time.Millisecond,
	}, server.Client())

	_, err := client.SendOtp(context.Background(), "+919876543210")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout)
}

func TestCanceledContextIsNotNetworkError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SendOtp(ctx, "+919876543210")
	assert.True(t, errors.Is(err, context.Canceled))
	var netErr *NetworkError
	assert.False(t, errors.As(err, &netErr))
}

func TestUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := newClient(models.ApiConfig{BaseURL: url, RequestTimeout: time.Second}, http.DefaultClient)
	_, err := client.SendOtp(context.Background(), "+919876543210")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.False(t, netErr.Timeout)
}
