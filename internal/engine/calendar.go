package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-birthday-web/internal/config"
)

// CalendarBuilder renders anniversaries as an iCalendar feed.
type CalendarBuilder struct {
	Clock Clock // Interface for time mocking.

	// FormatSummary lets the HTTP layer inject localized event titles.
	FormatSummary func(name string) string
}

// Build returns an ICS document with one all-day event per entry, placed on
// the entry's next anniversary relative to the builder's clock.
func (b *CalendarBuilder) Build(entries []Anniversary) ([]byte, error) {
	if len(entries) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	now := b.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, entry := range entries {
		event := b.createEvent(entry, NextAnniversary(entry.Date, now))
		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgCalendarBuilt,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCount, len(entries),
		config.LogKeySizeBytes, buf.Len())
	return buf.Bytes(), nil
}

func (b *CalendarBuilder) createEvent(entry Anniversary, on time.Time) *ical.Event {
	name := entry.Name
	if name == "" {
		name = config.FallbackName
	}

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, anniversaryUID(name, entry.Date), on.Year(), config.ICalDomain))

	summary := name
	if b.FormatSummary != nil {
		summary = b.FormatSummary(name)
	}
	event.Props.SetText(config.PropSummary, summary)

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(on)
	event.Props.Set(dtStartProp)
	return event
}

// anniversaryUID is stable across rebuilds so clients update events in place.
func anniversaryUID(name string, date CalendarDate) string {
	input := fmt.Sprintf(config.FormatHashInput, name, date.String(), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}
