package whmcs

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// flexString acepta string o número en JSON; WHMCS mezcla ambos según la versión.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(b))
	return nil
}

func (f flexString) String() string { return strings.TrimSpace(string(f)) }

func (f flexString) Int64() int64 {
	n, _ := strconv.ParseInt(f.String(), 10, 64)
	return n
}

// flexList lista que WHMCS envía como "" u objeto vacío cuando no hay elementos.
type flexList[T any] []T

func (l *flexList[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		*l = nil
		return nil
	}
	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// ── Estructuras de respuesta ─────────────────────────────────────────────────

type apiResult struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

type invoiceResponse struct {
	apiResult
	InvoiceID     flexString `json:"invoiceid"`
	InvoiceNum    flexString `json:"invoicenum"`
	UserID        flexString `json:"userid"`
	Date          flexString `json:"date"`
	DueDate       flexString `json:"duedate"`
	DatePaid      flexString `json:"datepaid"`
	Subtotal      flexString `json:"subtotal"`
	Tax           flexString `json:"tax"`
	Total         flexString `json:"total"`
	Balance       flexString `json:"balance"`
	TaxRate       flexString `json:"taxrate"`
	Status        flexString `json:"status"`
	PaymentMethod flexString `json:"paymentmethod"`
	Notes         flexString `json:"notes"`
	Items         struct {
		Item flexList[invoiceItem] `json:"item"`
	} `json:"items"`
	Transactions struct {
		Transaction flexList[transaction] `json:"transaction"`
	} `json:"transactions"`
}

// UnmarshalJSON tolera "items": "" y "transactions": "" cuando están vacíos.
func (r *invoiceResponse) UnmarshalJSON(b []byte) error {
	type alias invoiceResponse
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, key := range []string{"items", "transactions"} {
		if v, ok := raw[key]; ok && (len(v) == 0 || v[0] != '{') {
			delete(raw, key)
		}
	}
	clean, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(clean, (*alias)(r))
}

type invoiceItem struct {
	ID          flexString `json:"id"`
	Type        flexString `json:"type"`
	Description flexString `json:"description"`
	Amount      flexString `json:"amount"`
	Taxed       flexString `json:"taxed"`
}

type transaction struct {
	ID       flexString `json:"id"`
	Gateway  flexString `json:"gateway"`
	Date     flexString `json:"date"`
	AmountIn flexString `json:"amountin"`
	TransID  flexString `json:"transid"`
}

type clientResponse struct {
	apiResult
	Client clientDetails `json:"client"`
}

type clientDetails struct {
	ID           flexString            `json:"id"`
	UserID       flexString            `json:"userid"`
	FirstName    flexString            `json:"firstname"`
	LastName     flexString            `json:"lastname"`
	FullName     flexString            `json:"fullname"`
	CompanyName  flexString            `json:"companyname"`
	Email        flexString            `json:"email"`
	Address1     flexString            `json:"address1"`
	Address2     flexString            `json:"address2"`
	City         flexString            `json:"city"`
	State        flexString            `json:"state"`
	PostCode     flexString            `json:"postcode"`
	CountryCode  flexString            `json:"countrycode"`
	CountryName  flexString            `json:"countryname"`
	PhoneNumber  flexString            `json:"phonenumber"`
	TaxID        flexString            `json:"tax_id"`
	Status       flexString            `json:"status"`
	CurrencyCode flexString            `json:"currency_code"`
	CustomFields flexList[customField] `json:"customfields"`
}

type customField struct {
	ID    flexString `json:"id"`
	Name  flexString `json:"name"`
	Value flexString `json:"value"`
}

type paymentMethodsResponse struct {
	apiResult
	PaymentMethods struct {
		PaymentMethod flexList[paymentMethod] `json:"paymentmethod"`
	} `json:"paymentmethods"`
}

type paymentMethod struct {
	Module      flexString `json:"module"`
	DisplayName flexString `json:"displayname"`
}
