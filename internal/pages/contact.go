package pages

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geniusclasses/geniusclasses/internal/httputil"
	"github.com/geniusclasses/geniusclasses/internal/notify"
	"github.com/geniusclasses/geniusclasses/internal/validate"
)

const (
	maxContactFormBytes = 16 << 10
	inquiryTimeout      = 15 * time.Second
)

// MessageSent confirms a contact form submission.
var MessageSent = notify.Notice{
	Kind:    notify.Success,
	Message: "Message Sent!",
	Detail:  "We will get back to you shortly regarding your inquiry.",
}

type contactForm struct {
	Name    string
	Phone   string
	Subject string
	Message string
}

func (f contactForm) validate() string {
	return validate.First(
		validate.Required(f.Name, "full name"),
		validate.ContactName(f.Name),
		validate.Required(f.Phone, "mobile number"),
		validate.ContactPhone(f.Phone),
		validatePhone(f.Phone),
		validate.Required(f.Subject, "subject"),
		validate.Subject(f.Subject),
		validate.Required(f.Message, "message"),
		validate.ContactMessage(f.Message),
	)
}

func validatePhone(phone string) string {
	digits := 0
	for _, c := range phone {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == ' ' || c == '+' || c == '-':
		default:
			return "mobile number may only contain digits"
		}
	}
	if phone != "" && digits < 10 {
		return "mobile number must have at least 10 digits"
	}
	return ""
}

// notice turns a submission into the message staff receive.
func (f contactForm) notice(clientIP string) notify.Notice {
	return notify.Notice{
		Kind:    notify.Info,
		Message: "New inquiry: " + f.Subject,
		Detail:  fmt.Sprintf("From %s (%s), via %s\n\n%s", f.Name, f.Phone, clientIP, f.Message),
	}
}

type contactBody struct {
	Form  contactForm
	Error string
}

func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var notice *notify.Notice
	if r.URL.Query().Get("sent") == "1" {
		sent := MessageSent
		notice = &sent
	}
	h.render(w, r, http.StatusOK, "contact", "Contact Us", notice, contactBody{})
}

func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContactFormBytes)
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "contact", "Contact Us", nil, contactBody{Error: "invalid form submission"})
		return
	}

	form := contactForm{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Phone:   strings.TrimSpace(r.PostFormValue("phone")),
		Subject: strings.TrimSpace(r.PostFormValue("subject")),
		Message: strings.TrimSpace(r.PostFormValue("message")),
	}
	if msg := form.validate(); msg != "" {
		h.render(w, r, http.StatusBadRequest, "contact", "Contact Us", nil, contactBody{Form: form, Error: msg})
		return
	}

	if h.inquiries != nil {
		n := form.notice(httputil.ClientIP(r))
		// Delivery is detached from the request; WaitInquiries drains it.
		h.pending.Add(1)
		go func() {
			defer h.pending.Done()
			ctx, cancel := context.WithTimeout(context.Background(), inquiryTimeout)
			defer cancel()
			if err := h.inquiries.Notify(ctx, n); err != nil {
				slog.Error("pages: inquiry delivery failed", "error", err)
			}
		}()
	}

	http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
}

// WaitInquiries blocks until every contact inquiry handed to the notifier has
// been delivered or ctx ends.
func (h *Handler) WaitInquiries(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for inquiry delivery: %w", ctx.Err())
	}
}
