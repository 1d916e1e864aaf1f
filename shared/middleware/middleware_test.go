package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abpira/accounts/internal/audit"
	"github.com/abpira/accounts/shared/models"
	"github.com/gin-gonic/gin"
)

type testAccount struct {
	AccountNumber int64  `json:"accountNumber" validate:"required,account"`
	AccountType   string `json:"accountType" validate:"required"`
}

type testRequest struct {
	Name         string       `json:"name" validate:"required,min=5,max=30"`
	Email        string       `json:"email" validate:"required,email"`
	MobileNumber string       `json:"mobileNumber" validate:"required,mobile"`
	Account      *testAccount `json:"accountsDTO"`
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name     string
		req      testRequest
		expected map[string]string
	}{
		{
			name: "valid request",
			req:  testRequest{Name: "abcde", Email: "abcde@gmail.com", MobileNumber: "1234567890"},
		},
		{
			name: "missing fields",
			req:  testRequest{},
			expected: map[string]string{
				"name":         "Name should not be empty",
				"email":        "Email should not be empty",
				"mobileNumber": "Mobile number should not be empty",
			},
		},
		{
			name: "bad formats",
			req:  testRequest{Name: "abc", Email: "not-an-email", MobileNumber: "12345"},
			expected: map[string]string{
				"name":         "Name should be between 5 and 30 characters",
				"email":        "Invalid email format",
				"mobileNumber": "Mobile number should be 10 digits",
			},
		},
		{
			name: "nested account fields",
			req: testRequest{
				Name: "abcde", Email: "abcde@gmail.com", MobileNumber: "1234567890",
				Account: &testAccount{AccountNumber: 12},
			},
			expected: map[string]string{
				"accountsDTO.accountNumber": "Account number should be a valid 10 digit account number",
				"accountsDTO.accountType":   "Account type should not be empty",
			},
		},
		{
			name: "ten digit account number never issued",
			req: testRequest{
				Name: "abcde", Email: "abcde@gmail.com", MobileNumber: "1234567890",
				Account: &testAccount{AccountNumber: 1_950_000_000, AccountType: "Savings"},
			},
			expected: map[string]string{
				"accountsDTO.accountNumber": "Account number should be a valid 10 digit account number",
			},
		},
		{
			name: "issued account number",
			req: testRequest{
				Name: "abcde", Email: "abcde@gmail.com", MobileNumber: "1234567890",
				Account: &testAccount{AccountNumber: 1_899_999_999, AccountType: "Savings"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateRequest(tt.req)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v got %v", tt.expected, got)
			}
			for field, msg := range tt.expected {
				if got[field] != msg {
					t.Errorf("field %s: expected %q got %q", field, msg, got[field])
				}
			}
		})
	}
}

func TestValidateMobileNumberParam(t *testing.T) {
	if errs := ValidateMobileNumberParam("1234567890"); errs != nil {
		t.Errorf("expected valid, got %v", errs)
	}
	if errs := ValidateMobileNumberParam(""); errs != nil {
		t.Errorf("empty mobile number should pass the format check, got %v", errs)
	}
	if errs := ValidateMobileNumberParam("12ab"); errs["mobileNumber"] == "" {
		t.Errorf("expected mobileNumber violation, got %v", errs)
	}
}

func TestMiddlewareChain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var seenAuditor, seenRequestID string
	r.Use(LoggingMiddleware(), Recovery(nil), AuditorMiddleware("TEST_AUDITOR"))
	r.GET("/ok", func(c *gin.Context) {
		seenAuditor = audit.Auditor(c.Request.Context())
		seenRequestID = GetRequestID(c)
		c.Status(http.StatusNoContent)
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.NoRoute(NoRoute())

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", w.Code)
	}
	if seenAuditor != "TEST_AUDITOR" {
		t.Errorf("expected auditor on request context, got %q", seenAuditor)
	}
	if seenRequestID != "req-123" || w.Header().Get(RequestIDHeader) != "req-123" {
		t.Errorf("expected request id to be propagated, got %q / %q", seenRequestID, w.Header().Get(RequestIDHeader))
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/panic", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
	var body models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.APIPath != "uri=/panic" || body.ErrorCode != "INTERNAL_SERVER_ERROR" {
		t.Errorf("unexpected error body: %+v", body)
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Errorf("expected a generated request id")
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/nowhere", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
