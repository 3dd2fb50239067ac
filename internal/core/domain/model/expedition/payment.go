package expedition

import (
	"fmt"
	"strings"

	"expedition/internal/pkg/errs"
)

// PaymentMethod is how the shipment is paid for.
type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentMobileMoney   PaymentMethod = "mobileMoney"
	PaymentRecipientPays PaymentMethod = "recipientPays"
)

// ParsePaymentMethod maps a raw value to a payment method; blank means cash.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	method := PaymentMethod(strings.TrimSpace(raw))
	if method == "" {
		return PaymentCash, nil
	}
	if err := method.Validate(); err != nil {
		return "", err
	}
	return method, nil
}

func (m PaymentMethod) Validate() error {
	switch m {
	case PaymentCash, PaymentMobileMoney, PaymentRecipientPays:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("method",
		fmt.Errorf("%q is not one of cash, mobileMoney, recipientPays", string(m)))
}

// MobileOperator is the mobile money network debited for a mobile money payment.
type MobileOperator string

const (
	OperatorOrange MobileOperator = "orange"
	OperatorMTN    MobileOperator = "mtn"
)

// ParseMobileOperator maps a raw value to an operator; blank means orange.
func ParseMobileOperator(raw string) (MobileOperator, error) {
	operator := MobileOperator(strings.ToLower(strings.TrimSpace(raw)))
	switch operator {
	case "":
		return OperatorOrange, nil
	case OperatorOrange, OperatorMTN:
		return operator, nil
	}
	return "", errs.NewValueIsInvalidErrorWithCause("operator",
		fmt.Errorf("%q is not one of orange, mtn", raw))
}

// Payment is the payment choice made on the payment stage.
// Operator and MobilePhone are only meaningful for mobile money.
type Payment struct {
	Method      PaymentMethod  `json:"method"`
	Operator    MobileOperator `json:"operator,omitempty"`
	MobilePhone string         `json:"mobilePhone,omitempty"`
}

func defaultPayment() Payment {
	return Payment{Method: PaymentCash}
}
