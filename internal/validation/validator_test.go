package validation

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/agamariel/songorders/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	require.True(t, errors.Is(err, ErrValidation))
	return verr.Fields
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+79991234567", true},
		{"+15551234567", true},
		{"79991234567", true},
		{"+0123456789", false},   // ведущий ноль
		{"123", false},           // слишком короткий
		{"+1-234-567-890", false}, // разделители
		{"+1 234 567 8901", false},
		{"+1234567890123456", false}, // больше 15 цифр
		{"+7999abc4567", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPhone(tt.phone))
		})
	}
}

func TestValidPassword(t *testing.T) {
	assert.True(t, ValidPassword("Secret123"))
	assert.False(t, ValidPassword("secret123"))
	assert.False(t, ValidPassword("SECRET123"))
	assert.False(t, ValidPassword("SecretPass"))
}

func TestValidate_CreateOrder(t *testing.T) {
	valid := func() *CreateOrderRequest {
		return &CreateOrderRequest{RecipientName: "Jane", PhoneNumber: "+15551234567"}
	}

	t.Run("minimal valid order", func(t *testing.T) {
		require.NoError(t, Validate(valid()))
	})

	t.Run("trims recipient name", func(t *testing.T) {
		req := valid()
		req.RecipientName = "  Jane  "
		require.NoError(t, Validate(req))
		assert.Equal(t, "Jane", req.RecipientName)
	})

	t.Run("recipient name empty after trim", func(t *testing.T) {
		req := valid()
		req.RecipientName = "   "
		fields := fieldErrors(t, Validate(req))
		assert.Contains(t, fields, "recipientName")
	})

	t.Run("recipient name of 255 chars accepted", func(t *testing.T) {
		req := valid()
		req.RecipientName = strings.Repeat("я", 255)
		require.NoError(t, Validate(req))
	})

	t.Run("recipient name of 256 chars rejected", func(t *testing.T) {
		req := valid()
		req.RecipientName = strings.Repeat("a", 256)
		fields := fieldErrors(t, Validate(req))
		assert.Equal(t, []string{"must not exceed 255 characters"}, fields["recipientName"])
	})

	t.Run("limit checked after trim", func(t *testing.T) {
		req := valid()
		req.Mood = strPtr("  " + strings.Repeat("m", 50) + "  ")
		require.NoError(t, Validate(req))
		assert.Equal(t, strings.Repeat("m", 50), *req.Mood)
	})

	t.Run("optional fields over limits", func(t *testing.T) {
		req := valid()
		req.Relationship = strPtr(strings.Repeat("r", 101))
		req.Occasion = strPtr(strings.Repeat("o", 101))
		req.SpecialRequests = strPtr(strings.Repeat("s", 5001))
		req.Mood = strPtr(strings.Repeat("m", 51))
		req.Tempo = strPtr(strings.Repeat("t", 51))
		fields := fieldErrors(t, Validate(req))
		for _, f := range []string{"relationship", "occasion", "specialRequests", "mood", "tempo"} {
			assert.Contains(t, fields, f)
		}
	})

	t.Run("blank optional field becomes absent", func(t *testing.T) {
		req := valid()
		req.Occasion = strPtr("   ")
		require.NoError(t, Validate(req))
		assert.Nil(t, req.Occasion)
	})

	t.Run("musical style bounds", func(t *testing.T) {
		req := valid()
		req.MusicalStyle = []string{}
		assert.Contains(t, fieldErrors(t, Validate(req)), "musicalStyle")

		req = valid()
		req.MusicalStyle = make([]string, 11)
		assert.Contains(t, fieldErrors(t, Validate(req)), "musicalStyle")

		req = valid()
		req.MusicalStyle = []string{"pop", "rock"}
		require.NoError(t, Validate(req))
	})

	t.Run("missing phone", func(t *testing.T) {
		req := valid()
		req.PhoneNumber = ""
		assert.Equal(t, []string{"is required"}, fieldErrors(t, Validate(req))["phoneNumber"])
	})

	t.Run("bad phone", func(t *testing.T) {
		req := valid()
		req.PhoneNumber = "+0123456789"
		assert.Contains(t, fieldErrors(t, Validate(req)), "phoneNumber")
	})
}

func TestValidate_UpdateOrder(t *testing.T) {
	status := models.OrderStatus("SHIPPED")
	tier := models.PricingTier("GOLD")

	tests := []struct {
		name      string
		req       *UpdateOrderRequest
		badFields []string
	}{
		{name: "empty update", req: &UpdateOrderRequest{}},
		{
			name: "valid fields",
			req: &UpdateOrderRequest{
				PhoneNumber:    strPtr("+79991234567"),
				TelegramUserID: strPtr("123456"),
				SongFileURL:    strPtr("https://cdn.example.com/song.mp3"),
			},
		},
		{name: "unknown status", req: &UpdateOrderRequest{Status: &status}, badFields: []string{"status"}},
		{name: "unknown tier", req: &UpdateOrderRequest{SelectedTier: &tier}, badFields: []string{"selectedTier"}},
		{name: "bad url", req: &UpdateOrderRequest{SongFileURL: strPtr("not a url")}, badFields: []string{"songFileUrl"}},
		{name: "clear song file", req: &UpdateOrderRequest{SongFileURL: strPtr(""), SongFileName: strPtr("")}},
		{name: "blank url clears", req: &UpdateOrderRequest{SongFileURL: strPtr("   ")}},
		{name: "empty phone", req: &UpdateOrderRequest{PhoneNumber: strPtr("  ")}, badFields: []string{"phoneNumber"}},
		{
			name:      "long telegram fields",
			req:       &UpdateOrderRequest{TelegramUserID: strPtr(strings.Repeat("1", 51)), TelegramUsername: strPtr(strings.Repeat("u", 101))},
			badFields: []string{"telegramUserId", "telegramUsername"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if len(tt.badFields) == 0 {
				require.NoError(t, err)
				return
			}
			fields := fieldErrors(t, err)
			for _, f := range tt.badFields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestDecodeStrict(t *testing.T) {
	t.Run("known fields", func(t *testing.T) {
		var req UpdateOrderRequest
		require.NoError(t, DecodeStrict(strings.NewReader(`{"status":"IN_PROGRESS","readyAt":"2025-01-02T10:00:00Z"}`), &req))
		require.NotNil(t, req.Status)
		assert.Equal(t, models.OrderStatusInProgress, *req.Status)
		require.NotNil(t, req.ReadyAt)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		var req UpdateOrderRequest
		fields := fieldErrors(t, DecodeStrict(strings.NewReader(`{"recipientName":"Bob"}`), &req))
		assert.Equal(t, []string{"unrecognized field"}, fields["recipientName"])
	})

	t.Run("wrong type", func(t *testing.T) {
		var req UpdateOrderRequest
		fields := fieldErrors(t, DecodeStrict(strings.NewReader(`{"phoneNumber":42}`), &req))
		assert.Contains(t, fields, "phoneNumber")
	})

	t.Run("malformed body", func(t *testing.T) {
		var req UpdateOrderRequest
		assert.Contains(t, fieldErrors(t, DecodeStrict(strings.NewReader(`{`), &req)), "body")
	})
}

func TestValidate_CreateMessage(t *testing.T) {
	req := &CreateMessageRequest{OrderID: "3f2504e0-4f89-11d3-9a0c-0305e82c3301", Sender: models.MessageSenderAdmin, Content: "  Hello  "}
	require.NoError(t, Validate(req))
	assert.Equal(t, "Hello", req.Content)

	bad := &CreateMessageRequest{OrderID: "42", Sender: "BOT", Content: strings.Repeat("x", 10001)}
	fields := fieldErrors(t, Validate(bad))
	assert.Contains(t, fields, "orderId")
	assert.Contains(t, fields, "sender")
	assert.Contains(t, fields, "content")
}

func TestValidate_CreatePayment(t *testing.T) {
	orderID := "3f2504e0-4f89-11d3-9a0c-0305e82c3301"

	tests := []struct {
		name     string
		amount   string
		currency string
		wantErr  []string
	}{
		{name: "valid", amount: "1500.50", currency: "rub"},
		{name: "max amount", amount: "999999.99", currency: "USD"},
		{name: "zero amount", amount: "0", currency: "USD", wantErr: []string{"amount"}},
		{name: "negative amount", amount: "-1", currency: "USD", wantErr: []string{"amount"}},
		{name: "amount too large", amount: "1000000", currency: "USD", wantErr: []string{"amount"}},
		{name: "trailing zeros", amount: "10.500", currency: "USD"},
		{name: "sub-cent amount", amount: "0.001", currency: "USD", wantErr: []string{"amount"}},
		{name: "three decimal places", amount: "19.999", currency: "USD", wantErr: []string{"amount"}},
		{name: "short currency", amount: "10", currency: "US", wantErr: []string{"currency"}},
		{name: "digits in currency", amount: "10", currency: "U5D", wantErr: []string{"currency"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &CreatePaymentRequest{
				OrderID:  orderID,
				Amount:   decimal.RequireFromString(tt.amount),
				Currency: tt.currency,
				Tier:     models.PricingTierStandard,
			}
			err := Validate(req)
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)
				assert.Equal(t, strings.ToUpper(tt.currency), req.Currency)
				return
			}
			fields := fieldErrors(t, err)
			for _, f := range tt.wantErr {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestValidate_CreatePaymentScaleMessage(t *testing.T) {
	req := &CreatePaymentRequest{
		OrderID:  "3f2504e0-4f89-11d3-9a0c-0305e82c3301",
		Amount:   decimal.RequireFromString("0.001"),
		Currency: "USD",
		Tier:     models.PricingTierBasic,
	}
	fields := fieldErrors(t, Validate(req))
	assert.Equal(t, []string{"must have at most 2 decimal places"}, fields["amount"])
}

func TestValidate_CreateAdmin(t *testing.T) {
	req := &CreateAdminRequest{Email: " Admin@Example.com ", Password: "Secret123", Name: "Admin", Role: models.AdminRoleAdmin}
	require.NoError(t, Validate(req))
	assert.Equal(t, "admin@example.com", req.Email)

	bad := &CreateAdminRequest{Email: "nope", Password: "short", Name: "", Role: "OWNER"}
	fields := fieldErrors(t, Validate(bad))
	for _, f := range []string{"email", "password", "name", "role"} {
		assert.Contains(t, fields, f)
	}

	weak := &CreateAdminRequest{Email: "a@b.co", Password: "alllowercase1", Name: "A", Role: models.AdminRoleSuperAdmin}
	assert.Contains(t, fieldErrors(t, Validate(weak))["password"], "must contain at least one uppercase letter, one lowercase letter and one number")

	long := &CreateAdminRequest{Email: "a@b.co", Password: "Aa1" + strings.Repeat("x", 97), Name: "A", Role: models.AdminRoleAdmin}
	require.NoError(t, Validate(long))

	cyrillic := &CreateAdminRequest{Email: "a@b.co", Password: "Aa1" + strings.Repeat("ж", 40), Name: "A", Role: models.AdminRoleAdmin}
	require.NoError(t, Validate(cyrillic))

	tooLong := &CreateAdminRequest{Email: "a@b.co", Password: "Aa1" + strings.Repeat("x", 98), Name: "A", Role: models.AdminRoleAdmin}
	assert.Equal(t, []string{"must not exceed 100 characters"}, fieldErrors(t, Validate(tooLong))["password"])
}

func TestParseOrderFilter(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f, err := ParseOrderFilter(url.Values{})
		require.NoError(t, err)
		assert.Equal(t, 1, f.Page)
		assert.Equal(t, 20, f.Limit)
		assert.Nil(t, f.Status)
	})

	t.Run("all params", func(t *testing.T) {
		q := url.Values{
			"status":         {"READY"},
			"orderNumber":    {"2025"},
			"telegramUserId": {"777"},
			"startDate":      {"2025-01-01"},
			"endDate":        {"2025-02-01T00:00:00Z"},
			"page":           {"2"},
			"limit":          {"10"},
		}
		f, err := ParseOrderFilter(q)
		require.NoError(t, err)
		require.NotNil(t, f.Status)
		assert.Equal(t, models.OrderStatusReady, *f.Status)
		assert.Equal(t, "2025", f.OrderNumber)
		assert.Equal(t, "777", f.TelegramUserID)
		require.NotNil(t, f.StartDate)
		assert.Equal(t, 2025, f.StartDate.Year())
		assert.Equal(t, 10, f.Offset())
	})

	t.Run("invalid params", func(t *testing.T) {
		q := url.Values{"status": {"DONE"}, "page": {"0"}, "limit": {"101"}, "startDate": {"yesterday"}}
		_, err := ParseOrderFilter(q)
		fields := fieldErrors(t, err)
		for _, f := range []string{"status", "page", "limit", "startDate"} {
			assert.Contains(t, fields, f)
		}
	})
}
