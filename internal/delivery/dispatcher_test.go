package delivery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/snaplead-api/internal/domain"
	"github.com/phrazzld/snaplead-api/internal/platform/webhook"
)

// fakeSender records delivery posts in order and can fail selected steps.
type fakeSender struct {
	sends  []webhook.SendRequest
	finals []webhook.SendRequest

	sendErr  map[string]error // keyed by artifact field
	finalErr error
}

func (f *fakeSender) Send(ctx context.Context, req webhook.SendRequest) error {
	f.sends = append(f.sends, req)
	if err := f.sendErr[req.Fields["artifact"]]; err != nil {
		return err
	}
	return nil
}

func (f *fakeSender) FinalMessage(ctx context.Context, req webhook.SendRequest) error {
	f.finals = append(f.finals, req)
	return f.finalErr
}

func testPayload() Payload {
	return Payload{
		Contact: domain.Contact{Email: "dina@example.com", WhatsApp: "+628123456789"},
		Preferences: domain.Preferences{
			Name:              "Dina",
			Gender:            domain.GenderFemale,
			CoffeePreference:  domain.CoffeePreferenceCoffee,
			AlcoholPreference: domain.AlcoholPreferenceCocktail,
		},
		Category: domain.CategoryCoffeeCocktail,
		Analysis: &domain.AnalysisResult{Mood: "happy", Age: "27", Drink: "Espresso Martini", Emotion: "joyful"},
	}
}

func newTestDispatcher(sender Sender) (*Dispatcher, *[]time.Duration) {
	d := NewDispatcher(sender, 2*time.Second, nil)
	slept := &[]time.Duration{}
	d.sleep = func(dur time.Duration) { *slept = append(*slept, dur) }
	d.now = func() time.Time { return time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC) }
	return d, slept
}

func TestDispatchStyleBeforeIngredientsThenFinal(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	d, slept := newTestDispatcher(sender)

	p := testPayload()
	p.StyleImage = "data:image/png;base64,aGVsbG8="
	p.IngredientsImage = "data:image/jpeg;base64,d29ybGQ="

	d.Dispatch(context.Background(), p)

	require.Len(t, sender.sends, 2)
	assert.Equal(t, "style", sender.sends[0].Fields["artifact"])
	assert.Equal(t, "ingredients", sender.sends[1].Fields["artifact"])
	assert.Equal(t, []byte("hello"), sender.sends[0].Image)
	assert.Equal(t, "image/png", sender.sends[0].ImageContentType)
	assert.Equal(t, []byte("world"), sender.sends[1].Image)

	// Shared fields ride on every post.
	assert.Equal(t, "dina@example.com", sender.sends[0].Fields["email"])
	assert.Equal(t, "Coffee Cocktail", sender.sends[0].Fields["category"])
	assert.Equal(t, "happy", sender.sends[0].Fields["mood"])
	// 05:00 UTC is noon in Jakarta.
	assert.Equal(t, "2025-06-01 12:00:00", sender.sends[0].Fields["timestamp"])

	// Final message fires once, after the configured pause, without an image.
	require.Len(t, sender.finals, 1)
	assert.Equal(t, []time.Duration{2 * time.Second}, *slept)
	assert.Equal(t, "final_message", sender.finals[0].Fields["artifact"])
	assert.Empty(t, sender.finals[0].Image)
}

func TestDispatchNoFinalWhenIngredientsSendFails(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{sendErr: map[string]error{"ingredients": errors.New("endpoint down")}}
	d, slept := newTestDispatcher(sender)

	d.Dispatch(context.Background(), testPayload())

	assert.Len(t, sender.sends, 2)
	assert.Empty(t, sender.finals, "final message must not fire when its paired send failed")
	assert.Empty(t, *slept)
}

func TestDispatchStyleFailureDoesNotCancelIngredients(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{sendErr: map[string]error{"style": errors.New("endpoint down")}}
	d, _ := newTestDispatcher(sender)

	d.Dispatch(context.Background(), testPayload())

	// Both artifact deliveries are attempted independently.
	require.Len(t, sender.sends, 2)
	assert.Equal(t, "ingredients", sender.sends[1].Fields["artifact"])
	assert.Len(t, sender.finals, 1)
}

func TestDispatchBothJobsFailedSendsZeroAttachments(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	d, _ := newTestDispatcher(sender)

	// Both generation jobs errored: no image references at all.
	d.Dispatch(context.Background(), testPayload())

	require.Len(t, sender.sends, 2)
	for _, send := range sender.sends {
		assert.Empty(t, send.Image)
		assert.NotContains(t, send.Fields, "imageUrl")
	}
	assert.Len(t, sender.finals, 1)
}

func TestDispatchFetchesURLArtifacts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	sender := &fakeSender{}
	d, _ := newTestDispatcher(sender)

	p := testPayload()
	p.StyleImage = srv.URL + "/style.png"

	d.Dispatch(context.Background(), p)

	require.Len(t, sender.sends, 2)
	assert.Equal(t, []byte("png-bytes"), sender.sends[0].Image)
	assert.Equal(t, "image/png", sender.sends[0].ImageContentType)
}

func TestDispatchUnfetchableURLFallsBackToField(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	sender := &fakeSender{}
	d, _ := newTestDispatcher(sender)

	p := testPayload()
	p.StyleImage = srv.URL + "/missing.png"

	d.Dispatch(context.Background(), p)

	require.Len(t, sender.sends, 2)
	assert.Empty(t, sender.sends[0].Image)
	assert.Equal(t, p.StyleImage, sender.sends[0].Fields["imageUrl"])
}

func TestJakartaTimestamp(t *testing.T) {
	t.Parallel()

	// WIB is UTC+7 year-round.
	utc := time.Date(2025, 12, 31, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-01 01:30:00", JakartaTimestamp(utc))
}
