package acumulus

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/acumulus-sync/internal/application/billing"
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
)

const dateLayout = "2006-01-02"

var newlines = regexp.MustCompile(`\r\n|\r|\n`)

// XMLBuilder construye los documentos <myxml> que espera el API de Acumulus.
type XMLBuilder struct {
	cfg       Config
	templater billing.Templater
}

// NewXMLBuilder construye el generador. templater puede ser nil (textos vacíos).
func NewXMLBuilder(cfg Config, templater billing.Templater) *XMLBuilder {
	return &XMLBuilder{cfg: cfg.withDefaults(), templater: templater}
}

// ── Documentos ────────────────────────────────────────────────────────────────

// Invoice documento para invoice_add: contacto, factura, líneas y envío por email.
func (b *XMLBuilder) Invoice(sub *billing.InvoiceSubmission) ([]byte, error) {
	if sub == nil || sub.Invoice == nil || sub.Client == nil || sub.Config == nil {
		return nil, fmt.Errorf("acumulus: envío incompleto")
	}
	if sub.Invoice.Summary == nil {
		return nil, fmt.Errorf("acumulus: factura %d sin anotar", sub.Invoice.ID)
	}
	doc, root := b.basic()
	customer := root.CreateElement("customer")
	b.customer(customer, sub)
	invoice := customer.CreateElement("invoice")
	b.invoiceDetails(invoice, sub)
	b.invoiceLines(invoice, sub)
	if sub.Config.EmailAsPDF.Enabled {
		b.emailAsPDF(invoice, sub)
	}
	return write(doc)
}

// PaymentStatusSet documento para invoice_paymentstatus_set.
func (b *XMLBuilder) PaymentStatusSet(token string, status entity.PaymentStatus, date time.Time) ([]byte, error) {
	doc, root := b.basic()
	root.CreateElement("token").SetText(token)
	root.CreateElement("paymentstatus").SetText(status.Code())
	root.CreateElement("paymentdate").SetText(date.Format(dateLayout))
	return write(doc)
}

// PaymentStatusGet documento para invoice_paymentstatus_get.
func (b *XMLBuilder) PaymentStatusGet(token string) ([]byte, error) {
	doc, root := b.basic()
	root.CreateElement("token").SetText(token)
	return write(doc)
}

// EntryUpdate documento para entry_update (cambio de cuenta).
func (b *XMLBuilder) EntryUpdate(entryID int64, accountNumber string) ([]byte, error) {
	doc, root := b.basic()
	root.CreateElement("entryid").SetText(strconv.FormatInt(entryID, 10))
	addText(root, "accountnumber", accountNumber)
	return write(doc)
}

// ── Secciones ────────────────────────────────────────────────────────────────

// basic raíz con <contract>, <connector> y <format>.
func (b *XMLBuilder) basic() (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	root := doc.CreateElement("myxml")

	contract := root.CreateElement("contract")
	contract.CreateElement("contractcode").SetText(b.cfg.ContractCode)
	contract.CreateElement("username").SetText(b.cfg.Username)
	contract.CreateElement("password").SetText(b.cfg.Password)
	addText(contract, "emailonerror", b.cfg.ErrorEmail)
	addText(contract, "emailonwarning", b.cfg.WarningEmail)

	connector := root.CreateElement("connector")
	addText(connector, "application", b.cfg.Connector.Application)
	addText(connector, "webkoppel", b.cfg.Connector.Webkoppel)
	addText(connector, "development", b.cfg.Connector.Development)
	addText(connector, "remark", b.cfg.Connector.Remark)
	addText(connector, "sourceuri", b.cfg.Connector.SourceURI)

	root.CreateElement("format").SetText("xml")
	return doc, root
}

func (b *XMLBuilder) customer(el *etree.Element, sub *billing.InvoiceSubmission) {
	cfg, client := sub.Config, sub.Client

	vatNumber := client.TaxID
	if vatNumber == "" {
		vatNumber = client.CustomField(cfg.VatFieldName)
	}

	if !cfg.CustomerImport {
		addText(el, "countrycode", client.CountryCode)
		addText(el, "vatnumber", vatNumber)
		return
	}

	el.CreateElement("type").SetText(cfg.CustomerType.Code())
	if client.ID != 0 {
		el.CreateElement("contactyourid").SetText(strconv.FormatInt(client.ID, 10))
	}
	el.CreateElement("contactstatus").SetText(contactStatus(client.Status))
	addText(el, "companyname1", client.CompanyName)
	addText(el, "fullname", fullName(client))
	addText(el, "address1", client.Address1)
	addText(el, "address2", client.Address2)
	addText(el, "postalcode", strings.Join(strings.Fields(client.PostCode), ""))
	addText(el, "city", city(client))
	addText(el, "country", CountryName(client.CountryCode))
	addText(el, "countrycode", client.CountryCode)
	el.CreateElement("countryautoname").SetText(cfg.CountryAutoName.Code())
	addText(el, "vatnumber", vatNumber)
	addText(el, "telephone", client.PhoneNumber)
	addText(el, "email", client.Email)
	el.CreateElement("overwriteifexists").SetText(flag(cfg.OverwriteIfExists))
	addText(el, "bankaccountnumber", client.CustomField(cfg.IbanFieldName))
	addText(el, "mark", b.render(cfg.CustomerMark, sub))
	el.CreateElement("disableduplicates").SetText(flag(cfg.DisableDuplicates))
}

func (b *XMLBuilder) invoiceDetails(el *etree.Element, sub *billing.InvoiceSubmission) {
	cfg, inv := sub.Config, sub.Invoice

	// Con numeración secuencial el número lo asigna Acumulus.
	if !cfg.SequentialNumbering {
		addText(el, "number", inv.DisplayNumber())
	}
	el.CreateElement("vattype").SetText(inv.Summary.VatType.Code())
	if !inv.Date.IsZero() {
		el.CreateElement("issuedate").SetText(inv.Date.Format(dateLayout))
	}
	addText(el, "costcenter", cfg.CostCenterID)
	addText(el, "accountnumber", cfg.AccountNumber(inv.PaymentMethod))

	description := b.render(cfg.Description, sub)
	paymentStatus := entity.PaymentStatusDue
	var paymentDate string
	if inv.IsPaid() {
		paymentStatus = entity.PaymentStatusPaid
	}
	if inv.PaidDate != nil && !inv.PaidDate.IsZero() {
		paymentDate = inv.PaidDate.Format(dateLayout)
	}
	if sub.Credit {
		description = b.render(cfg.CreditDescription, sub)
		paymentStatus = entity.PaymentStatusPaid
		paymentDate = sub.PaymentDate.Format(dateLayout)
	}

	addText(el, "paymentdate", paymentDate)
	el.CreateElement("paymentstatus").SetText(paymentStatus.Code())
	addText(el, "description", description)
	addText(el, "descriptiontext", strings.ReplaceAll(b.render(cfg.DescriptionText, sub), "\n", `\n`))
	addText(el, "template", cfg.TemplateID)
	notes := strings.NewReplacer("\n", `\n`, "{TAB}", `\t`).Replace(b.render(cfg.InvoiceNotes, sub))
	addText(el, "invoicenotes", notes)
}

func (b *XMLBuilder) invoiceLines(el *etree.Element, sub *billing.InvoiceSubmission) {
	cfg, inv := sub.Config, sub.Invoice
	nature := string(cfg.DefaultNature)
	rate := inv.Summary.TaxRate.String()

	if cfg.SummarizeInvoice {
		if !inv.Summary.SubtotalTaxedExclTax.IsZero() {
			addLine(el, b.render(cfg.SummaryTextTaxed, sub), nature, inv.Summary.SubtotalTaxedExclTax, rate)
		}
		if !inv.Summary.SubtotalUntaxed.IsZero() {
			addLine(el, b.render(cfg.SummaryTextUntaxed, sub), nature, inv.Summary.SubtotalUntaxed, "-1")
		}
		return
	}

	for _, item := range inv.Items {
		lineRate := "-1"
		if item.Taxed {
			lineRate = rate
		}
		addLine(el, newlines.ReplaceAllString(item.Description, " "), nature, item.Tax.PriceExclUnrounded, lineRate)
	}
}

func (b *XMLBuilder) emailAsPDF(el *etree.Element, sub *billing.InvoiceSubmission) {
	pdf := sub.Config.EmailAsPDF
	email := el.CreateElement("emailaspdf")
	addText(email, "emailto", sub.Client.Email)
	addText(email, "emailbcc", pdf.BCC)
	addText(email, "emailfrom", pdf.From)
	addText(email, "subject", b.render(pdf.Subject, sub))
	addText(email, "message", strings.ReplaceAll(b.render(pdf.Message, sub), "\n", `\n`))
	email.CreateElement("confirmreading").SetText(flag(pdf.ConfirmReading))
}

// ── helpers privados ─────────────────────────────────────────────────────────

func (b *XMLBuilder) render(tmpl string, sub *billing.InvoiceSubmission) string {
	if b.templater == nil || tmpl == "" {
		return ""
	}
	return b.templater.Render(tmpl, sub.Invoice, sub.Client)
}

func addLine(el *etree.Element, product, nature string, unitPrice decimal.Decimal, vatRate string) {
	line := el.CreateElement("line")
	addText(line, "product", product)
	addText(line, "nature", nature)
	price := "0.000"
	if !unitPrice.IsZero() {
		price = unitPrice.String()
	}
	line.CreateElement("unitprice").SetText(price)
	line.CreateElement("vatrate").SetText(vatRate)
	line.CreateElement("quantity").SetText("1")
}

// addText añade el hijo solo si el valor no está vacío.
func addText(parent *etree.Element, tag, value string) {
	if value == "" {
		return
	}
	parent.CreateElement(tag).SetText(value)
}

func write(doc *etree.Document) ([]byte, error) {
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("acumulus: serializar xml: %w", err)
	}
	return out, nil
}

func flag(on bool) string {
	if on {
		return "1"
	}
	return "0"
}

func contactStatus(status string) string {
	switch status {
	case entity.ClientStatusClosed, entity.ClientStatusInactive:
		return "0"
	default:
		return "1"
	}
}

func fullName(c *entity.Client) string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

func city(c *entity.Client) string {
	if c.State == "" {
		return c.City
	}
	return c.City + ", " + c.State
}
