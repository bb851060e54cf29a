package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// CalendarClient wraps the Google Calendar authorization-code flow. Tokens
// are handed back to the browser and replayed on every sync call; the server
// never stores them.
type CalendarClient struct {
	conf *oauth2.Config
}

// ErrCalendarDisabled is returned when OAuth credentials are not configured.
var ErrCalendarDisabled = errors.New("calendar sync not configured")

const calendarEventsURL = "https://www.googleapis.com/calendar/v3/calendars/primary/events"

func NewCalendarClient(clientID, clientSecret, redirectURL string) *CalendarClient {
	if clientID == "" || clientSecret == "" {
		return &CalendarClient{}
	}
	return &CalendarClient{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/calendar.events"},
			Endpoint:     google.Endpoint,
		},
	}
}

// Enabled reports whether OAuth credentials were configured.
func (c *CalendarClient) Enabled() bool { return c.conf != nil }

// AuthURL returns the consent URL for the given anti-CSRF state.
func (c *CalendarClient) AuthURL(state string) (string, error) {
	if c.conf == nil {
		return "", ErrCalendarDisabled
	}
	return c.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")), nil
}

// Exchange swaps an authorization code for a token pair.
func (c *CalendarClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if c.conf == nil {
		return nil, ErrCalendarDisabled
	}
	return c.conf.Exchange(ctx, code)
}

// CalendarEvent is the payload for one inserted calendar entry.
type CalendarEvent struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

type gcalTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type gcalEvent struct {
	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Start       gcalTime `json:"start"`
	End         gcalTime `json:"end"`
}

// InsertEvent creates the event on the caller's primary calendar using the
// client-supplied token. The oauth2 transport refreshes an expired access
// token transparently when a refresh token is present.
func (c *CalendarClient) InsertEvent(ctx context.Context, tok *oauth2.Token, ev CalendarEvent) error {
	if c.conf == nil {
		return ErrCalendarDisabled
	}

	body, err := json.Marshal(gcalEvent{
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       gcalTime{DateTime: ev.Start.Format(time.RFC3339)},
		End:         gcalTime{DateTime: ev.End.Format(time.RFC3339)},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, calendarEventsURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.conf.Client(ctx, tok)
	httpClient.Timeout = 10 * time.Second
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errStatus(resp.StatusCode)
	}
	return nil
}
