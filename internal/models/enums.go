package models

// Closed enums for every variant field that drives behavior. Handlers and
// services switch exhaustively on these instead of comparing raw strings.

type ItemKind string

const (
	ItemService ItemKind = "service"
	ItemProduct ItemKind = "product"
)

func (k ItemKind) Valid() bool {
	switch k {
	case ItemService, ItemProduct:
		return true
	}
	return false
}

type QuoteStatus string

const (
	QuotePending   QuoteStatus = "pending"
	QuoteApproved  QuoteStatus = "approved"
	QuoteRejected  QuoteStatus = "rejected"
	QuoteConverted QuoteStatus = "converted"
)

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuotePending, QuoteApproved, QuoteRejected, QuoteConverted:
		return true
	}
	return false
}

type SaleStatus string

const (
	SaleInProgress SaleStatus = "in_progress"
	SaleCompleted  SaleStatus = "completed"
	SaleCancelled  SaleStatus = "cancelled"
)

func (s SaleStatus) Valid() bool {
	switch s {
	case SaleInProgress, SaleCompleted, SaleCancelled:
		return true
	}
	return false
}

type PaymentKind string

const (
	PaymentSingle       PaymentKind = "single"
	PaymentInstallments PaymentKind = "installments"
)

func (k PaymentKind) Valid() bool {
	switch k {
	case PaymentSingle, PaymentInstallments:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodCash       PaymentMethod = "cash"
	MethodPix        PaymentMethod = "pix"
	MethodDebitCard  PaymentMethod = "debit_card"
	MethodCreditCard PaymentMethod = "credit_card"
	MethodBoleto     PaymentMethod = "boleto"
	MethodTransfer   PaymentMethod = "transfer"
	MethodCheque     PaymentMethod = "cheque"
)

// Valid accepts the empty method: payment method is optional on a sale.
func (m PaymentMethod) Valid() bool {
	switch m {
	case "", MethodCash, MethodPix, MethodDebitCard, MethodCreditCard, MethodBoleto, MethodTransfer, MethodCheque:
		return true
	}
	return false
}

type ExpenseKind string

const (
	ExpenseFixed    ExpenseKind = "fixed"
	ExpenseVariable ExpenseKind = "variable"
	ExpenseSalary   ExpenseKind = "salary"
)

func (k ExpenseKind) Valid() bool {
	switch k {
	case ExpenseFixed, ExpenseVariable, ExpenseSalary:
		return true
	}
	return false
}

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

func (s EmployeeStatus) Valid() bool {
	switch s {
	case EmployeeActive, EmployeeInactive:
		return true
	}
	return false
}
