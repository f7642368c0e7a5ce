package view

import (
	"github.com/kapu/higapro-site/internal/constants"
	"github.com/kapu/higapro-site/internal/contact"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// ContactData is the state of the contact form. CSRFField is the hidden token
// input, nil when CSRF protection is off.
type ContactData struct {
	Form      contact.Form
	Errors    contact.FieldErrors
	CSRFField g.Node
}

type field struct {
	name        string
	label       string
	placeholder string
	inputType   string
	value       string
}

func ContactForm(data ContactData) g.Node {
	fields := []field{
		{"name", "お名前", "お名前を入力", "text", data.Form.Name},
		{"email", "メールアドレス", "メールアドレスを入力", "email", data.Form.Email},
		{"subject", "件名", "件名を入力", "text", data.Form.Subject},
		{"message", "ご相談内容", "ご相談内容を入力", "", data.Form.Message},
	}

	return g.El("form",
		Class("contact-form"),
		Action("/contact#contact"),
		Method("post"),
		g.Attr("novalidate"),
		g.Attr("data-sending", constants.Toast.Sending),
		data.CSRFField,
		Div(
			Class("fields"),
			g.Map(fields, func(f field) g.Node {
				return formField(f, data.Errors[f.name])
			}),
		),
		Div(
			Class("button-wrapper"),
			Button(Class("button"), Type("submit"), Span(g.Text("送信する"))),
		),
	)
}

func formField(f field, errorText string) g.Node {
	var control g.Node
	if f.inputType == "" {
		control = Textarea(
			Class("textarea"),
			ID(f.name),
			Name(f.name),
			Placeholder(f.placeholder),
			g.Attr("rows", "4"),
			g.Text(f.value),
		)
	} else {
		control = Input(
			Class("input"),
			ID(f.name),
			Name(f.name),
			Type(f.inputType),
			Placeholder(f.placeholder),
			Value(f.value),
		)
	}

	return Div(
		Class("field"),
		g.El("label", Class("label"), g.Attr("for", f.name), g.Text(f.label), g.El("abbr", g.Text("*"))),
		control,
		g.If(errorText != "", P(Class("error"), g.Attr("data-error", f.name), g.Text(errorText))),
	)
}
