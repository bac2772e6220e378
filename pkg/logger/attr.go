package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// EventType records the billing event type under the key "event_type".
func EventType(eventType string) slog.Attr {
	return slog.String("event_type", eventType)
}

// UserEmail records the account identifier under the key "user_email".
func UserEmail(email string) slog.Attr {
	return slog.String("user_email", email)
}

// Plan records the plan name under the key "plan".
func Plan(name string) slog.Attr {
	return slog.String("plan", name)
}

// InvoiceNumber records the invoice number under the key "invoice_number".
func InvoiceNumber(number string) slog.Attr {
	return slog.String("invoice_number", number)
}

// RequestID records the request identifier under the key "request_id".
// If id is nil, it returns an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}
