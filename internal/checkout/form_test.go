package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidCard(t *testing.T) {
	assert.NoError(t, validForm().Validate())
}

func TestValidate_MissingBuyer(t *testing.T) {
	f := validForm()
	f.Buyer = Buyer{Email: "not-an-email"}

	var verr *ValidationError
	require.ErrorAs(t, f.Validate(), &verr)
	assert.Equal(t, "required", verr.Fields["buyer.name"])
	assert.Equal(t, "required", verr.Fields["buyer.phone"])
	assert.Equal(t, "invalid email address", verr.Fields["buyer.email"])
}

func TestValidate_FieldsPerMethod(t *testing.T) {
	tests := []struct {
		name     string
		payment  Payment
		expected []string
	}{
		{
			name:     "card",
			payment:  Payment{Method: MethodCard, CardNumber: "4242"},
			expected: []string{"payment.card_holder", "payment.card_expiry", "payment.card_cvc"},
		},
		{
			name:     "mobile wallet",
			payment:  Payment{Method: MethodMobileWallet},
			expected: []string{"payment.wallet_provider", "payment.wallet_account"},
		},
		{
			name:     "crypto",
			payment:  Payment{Method: MethodCryptoPay, CryptoNetwork: "BTC"},
			expected: []string{"payment.crypto_address"},
		},
		{
			name:     "other",
			payment:  Payment{Method: MethodOther},
			expected: []string{"payment.instructions"},
		},
		{
			name:     "missing method",
			payment:  Payment{},
			expected: []string{"payment.method"},
		},
		{
			name:     "unknown method",
			payment:  Payment{Method: "barter"},
			expected: []string{"payment.method"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			f.Payment = tt.payment

			var verr *ValidationError
			require.ErrorAs(t, f.Validate(), &verr)
			assert.Len(t, verr.Fields, len(tt.expected))
			for _, field := range tt.expected {
				assert.Contains(t, verr.Fields, field)
			}
		})
	}
}

func TestValidationError_ListsFieldsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"payment.method": "required", "buyer.name": "required"}}
	assert.Equal(t, "invalid checkout form: buyer.name, payment.method", err.Error())
}

func TestPaymentMasked(t *testing.T) {
	assert.Equal(t, "card ending 4242", validForm().Payment.Masked())
	assert.Equal(t, "PayNow wallet", Payment{Method: MethodMobileWallet, WalletProvider: "PayNow"}.Masked())
	assert.Equal(t, "ETH wallet", Payment{Method: MethodCryptoPay, CryptoNetwork: "ETH"}.Masked())
	assert.Equal(t, "other", Payment{Method: MethodOther, Instructions: "cash"}.Masked())
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, MethodCard.Valid())
	assert.True(t, MethodOther.Valid())
	assert.False(t, PaymentMethod("").Valid())
	assert.False(t, PaymentMethod("cheque").Valid())
}
