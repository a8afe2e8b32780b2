package ledger

// Spend categories with special treatment.
const (
	CategoryTravel      = "Путешествия"
	CategoryHotels      = "Отели"
	CategoryTaxi        = "Такси"
	CategoryRestaurants = "Кафе и рестораны"
	CategoryCosmetics   = "Косметика и Парфюмерия"
	CategoryJewelry     = "Ювелирные украшения"
	CategoryWatchHome   = "Смотрим дома"
	CategoryPlayHome    = "Играем дома"
	CategoryCinema      = "Кино"
)

var (
	TravelCategories  = []string{CategoryTravel, CategoryHotels, CategoryTaxi}
	PremiumCategories = []string{CategoryRestaurants, CategoryCosmetics, CategoryJewelry}
	OnlineCategories  = []string{CategoryWatchHome, CategoryPlayHome, CategoryCinema}
)

// Transfer types read by the rules.
const (
	TransferATMWithdrawal   = "atm_withdrawal"
	TransferFXBuy           = "fx_buy"
	TransferFXSell          = "fx_sell"
	TransferDepositTopupOut = "deposit_topup_out"
	TransferP2POut          = "p2p_out"
	TransferCardOut         = "card_out"
	TransferLoanPaymentOut  = "loan_payment_out"
	TransferCCRepaymentOut  = "cc_repayment_out"
	TransferInstallmentOut  = "installment_payment_out"
	TransferInvestOut       = "invest_out"
	TransferInvestIn        = "invest_in"
)

var (
	FXTransferTypes   = []string{TransferFXBuy, TransferFXSell}
	LoanTransferTypes = []string{TransferLoanPaymentOut, TransferCCRepaymentOut, TransferInstallmentOut}
)

// FXRates converts foreign spend into KZT. Unknown currencies convert to zero.
var FXRates = map[string]float64{
	"USD": 450,
	"EUR": 500,
	"RUB": 5,
}

// ObservationMonths is the length of the input window.
const ObservationMonths = 3

// AnnualizationFactor turns a 3-month figure into a yearly one.
const AnnualizationFactor = 4

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
