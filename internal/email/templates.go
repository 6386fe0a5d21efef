package email

import (
	"text/template"
)

// Plain text bodies for the order lifecycle emails. Kept as text so
// they render everywhere; the storefront does not send HTML mail.

const orderSummaryPartial = `Order reference: {{ .Order.ID }}

{{ range .Items }}  {{ .Quantity }} x {{ .ProductName }} ({{ .Size }}) - {{ money .LineTotal }}
{{ end }}
  Subtotal:  {{ money .Order.Subtotal }}
  Shipping:  {{ money .Order.ShippingCost }}
  VAT:       {{ money .Order.VAT }}
  Total:     {{ money .Order.TotalAmount }}

Payment: {{ .Order.PaymentStatusDisplay }}
{{- if .Order.RemainingAmount.IsPositive }}
Due on delivery: {{ money .Order.RemainingAmount }}
{{- end }}`

var orderTemplates = map[string]*template.Template{
	"order_created": mustTemplate("order_created", `Hi {{ .Order.FullName }},

Thank you for your order. We have received it and will begin
processing once payment is confirmed.

`+orderSummaryPartial+`

Estimated delivery: {{ .Order.EstimatedDelivery }}

{{ .Shop }}`),

	"order_confirmed": mustTemplate("order_confirmed", `Hi {{ .Order.FullName }},

Good news, your payment has been received and your order is now
being processed.

`+orderSummaryPartial+`

Estimated delivery: {{ .Order.EstimatedDelivery }}

{{ .Shop }}`),

	"order_shipped": mustTemplate("order_shipped", `Hi {{ .Order.FullName }},

Your order is on its way.

`+orderSummaryPartial+`

Estimated delivery: {{ .Order.EstimatedDelivery }}

{{ .Shop }}`),

	"order_delivered": mustTemplate("order_delivered", `Hi {{ .Order.FullName }},

Your order has been delivered. We hope you love it.

`+orderSummaryPartial+`

{{ .Shop }}`),

	"order_cancelled": mustTemplate("order_cancelled", `Hi {{ .Order.FullName }},

Your order has been cancelled. If you paid online, your refund will
be processed within 5-10 business days.

`+orderSummaryPartial+`

{{ .Shop }}`),

	"order_status_updated": mustTemplate("order_status_updated", `Hi {{ .Order.FullName }},

There's an update on your order: it is now "{{ .Order.Status }}".

`+orderSummaryPartial+`

{{ .Shop }}`),
}

func mustTemplate(name, body string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse(body))
}
