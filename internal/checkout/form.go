package checkout

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
)

type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodMobileWallet PaymentMethod = "mobile-wallet"
	MethodCryptoPay    PaymentMethod = "crypto-pay"
	MethodOther        PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodMobileWallet, MethodCryptoPay, MethodOther:
		return true
	}
	return false
}

type Buyer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Payment is the selected method plus the fields that method needs.
type Payment struct {
	Method PaymentMethod `json:"method"`

	CardHolder string `json:"card_holder,omitempty"`
	CardNumber string `json:"card_number,omitempty"`
	CardExpiry string `json:"card_expiry,omitempty"`
	CardCVC    string `json:"card_cvc,omitempty"`

	WalletProvider string `json:"wallet_provider,omitempty"`
	WalletAccount  string `json:"wallet_account,omitempty"`

	CryptoNetwork string `json:"crypto_network,omitempty"`
	CryptoAddress string `json:"crypto_address,omitempty"`

	Instructions string `json:"instructions,omitempty"`
}

// Masked returns a log-safe description of the payment.
func (p Payment) Masked() string {
	switch p.Method {
	case MethodCard:
		digits := strings.ReplaceAll(p.CardNumber, " ", "")
		if len(digits) > 4 {
			digits = digits[len(digits)-4:]
		}
		return fmt.Sprintf("card ending %s", digits)
	case MethodMobileWallet:
		return fmt.Sprintf("%s wallet", p.WalletProvider)
	case MethodCryptoPay:
		return fmt.Sprintf("%s wallet", p.CryptoNetwork)
	default:
		return string(p.Method)
	}
}

type Form struct {
	Buyer   Buyer   `json:"buyer"`
	Payment Payment `json:"payment"`
}

// ValidationError lists the form fields that are missing or malformed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid checkout form: " + strings.Join(names, ", ")
}

// Validate checks the buyer fields and the fields required by the chosen
// payment method.
func (f Form) Validate() error {
	fields := make(map[string]string)
	required := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			fields[name] = "required"
		}
	}

	required("buyer.name", f.Buyer.Name)
	required("buyer.phone", f.Buyer.Phone)
	if strings.TrimSpace(f.Buyer.Email) == "" {
		fields["buyer.email"] = "required"
	} else if _, err := mail.ParseAddress(f.Buyer.Email); err != nil {
		fields["buyer.email"] = "invalid email address"
	}

	p := f.Payment
	switch p.Method {
	case MethodCard:
		required("payment.card_holder", p.CardHolder)
		required("payment.card_number", p.CardNumber)
		required("payment.card_expiry", p.CardExpiry)
		required("payment.card_cvc", p.CardCVC)
	case MethodMobileWallet:
		required("payment.wallet_provider", p.WalletProvider)
		required("payment.wallet_account", p.WalletAccount)
	case MethodCryptoPay:
		required("payment.crypto_network", p.CryptoNetwork)
		required("payment.crypto_address", p.CryptoAddress)
	case MethodOther:
		required("payment.instructions", p.Instructions)
	case "":
		fields["payment.method"] = "required"
	default:
		fields["payment.method"] = "unsupported payment method"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
