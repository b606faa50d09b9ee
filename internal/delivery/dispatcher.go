package delivery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/snaplead-api/internal/domain"
	"github.com/phrazzld/snaplead-api/internal/platform/webhook"
	"github.com/phrazzld/snaplead-api/internal/redact"
)

// Sender is the slice of the webhook client the dispatcher needs.
type Sender interface {
	Send(ctx context.Context, req webhook.SendRequest) error
	FinalMessage(ctx context.Context, req webhook.SendRequest) error
}

// Payload is everything one delivery run works from, assembled by the caller
// from a consistent session snapshot.
type Payload struct {
	Contact     domain.Contact
	Preferences domain.Preferences
	Category    domain.Category
	Analysis    *domain.AnalysisResult

	// StyleImage and IngredientsImage are the job results: URLs or data
	// URLs, empty when the job produced nothing.
	StyleImage       string
	IngredientsImage string
}

// Dispatcher runs the delivery sequence for a session: style artifact first,
// then ingredients, then (after a fixed pause) the closing message.
type Dispatcher struct {
	sender     Sender
	httpClient *http.Client
	delay      time.Duration
	logger     *slog.Logger

	// sleep and now are swapped out in tests.
	sleep func(time.Duration)
	now   func() time.Time
}

// NewDispatcher creates a dispatcher. delay is the pause between the
// ingredients delivery and the closing message.
func NewDispatcher(sender Sender, delay time.Duration, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sender:     sender,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		delay:      delay,
		logger:     logger.With(slog.String("component", "delivery_dispatcher")),
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

// Dispatch runs the full delivery sequence. Artifacts are sent independently,
// style strictly before ingredients; a send still goes out when its job
// produced no image, just without the attachment, so the customer always
// hears from us. The closing message fires only after the ingredients send
// succeeded. Nothing here returns an error: every failure is logged and
// swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, p Payload) {
	fields := d.baseFields(p)

	d.bestEffort("style artifact delivery", func() error {
		return d.sender.Send(ctx, d.sendRequest(ctx, fields, "style", p.StyleImage))
	})

	ingredientsSent := d.bestEffort("ingredients artifact delivery", func() error {
		return d.sender.Send(ctx, d.sendRequest(ctx, fields, "ingredients", p.IngredientsImage))
	})

	if !ingredientsSent {
		return
	}

	d.sleep(d.delay)
	d.bestEffort("final message delivery", func() error {
		return d.sender.FinalMessage(ctx, webhook.SendRequest{Fields: withArtifact(fields, "final_message")})
	})
}

// bestEffort runs one delivery step, converting failure into a log line.
// The return value only feeds the final-message gate.
func (d *Dispatcher) bestEffort(op string, fn func() error) bool {
	if err := fn(); err != nil {
		d.logger.Warn("delivery step failed",
			slog.String("step", op),
			slog.String("error", redact.Error(err)))
		return false
	}
	d.logger.Info("delivery step completed", slog.String("step", op))
	return true
}

// baseFields flattens the payload into the form fields shared by every post
// of one delivery run.
func (d *Dispatcher) baseFields(p Payload) map[string]string {
	fields := map[string]string{
		"email":             p.Contact.Email,
		"whatsapp":          p.Contact.WhatsApp,
		"name":              p.Preferences.Name,
		"gender":            string(p.Preferences.Gender),
		"coffeePreference":  string(p.Preferences.CoffeePreference),
		"alcoholPreference": string(p.Preferences.AlcoholPreference),
		"category":          string(p.Category),
		"timestamp":         JakartaTimestamp(d.now()),
	}
	if p.Analysis != nil {
		if p.Analysis.Mood != "" {
			fields["mood"] = p.Analysis.Mood
		}
		if p.Analysis.Age != "" {
			fields["age"] = p.Analysis.Age
		}
		if p.Analysis.Drink != "" {
			fields["drink"] = p.Analysis.Drink
		}
		if p.Analysis.Emotion != "" {
			fields["emotion"] = p.Analysis.Emotion
		}
	}
	return fields
}

// sendRequest builds one artifact post. The image reference is materialized
// into an attachment where possible; a URL that cannot be fetched rides along
// as a plain field instead.
func (d *Dispatcher) sendRequest(ctx context.Context, base map[string]string, artifact, imageRef string) webhook.SendRequest {
	fields := withArtifact(base, artifact)
	req := webhook.SendRequest{Fields: fields}

	switch {
	case imageRef == "":
		// Job produced nothing; the post goes out bare.
	case strings.HasPrefix(imageRef, "data:"):
		data, contentType, err := domain.DecodeImageDataURL(imageRef)
		if err != nil {
			d.logger.Warn("artifact data URL unreadable, sending without image",
				slog.String("artifact", artifact),
				slog.String("error", err.Error()))
			break
		}
		req.Image = data
		req.ImageContentType = contentType
	default:
		data, contentType, err := d.fetchImage(ctx, imageRef)
		if err != nil {
			d.logger.Warn("artifact fetch failed, sending image URL instead",
				slog.String("artifact", artifact),
				slog.String("error", redact.Error(err)))
			fields["imageUrl"] = imageRef
			break
		}
		req.Image = data
		req.ImageContentType = contentType
	}

	return req
}

// fetchImage downloads a generated artifact so it can be re-attached to the
// delivery post.
func (d *Dispatcher) fetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build artifact request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("artifact request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("artifact request returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read artifact body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return data, contentType, nil
}

// withArtifact copies the base fields and tags them with the artifact name.
func withArtifact(base map[string]string, artifact string) map[string]string {
	fields := make(map[string]string, len(base)+1)
	for k, v := range base {
		fields[k] = v
	}
	fields["artifact"] = artifact
	return fields
}

// jakartaLocation is resolved once; the venue operates on WIB regardless of
// where the server runs.
var jakartaLocation = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}()

// JakartaTimestamp renders the delivery timestamp in the venue's timezone.
func JakartaTimestamp(t time.Time) string {
	return t.In(jakartaLocation).Format("2006-01-02 15:04:05")
}
