package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-birthday-web/internal/config"
)

// DecodeAuthors reads authors from a vCard stream.
// Malformed cards, and cards without a usable name or birthday, are skipped
// and logged. Only a failure of the underlying reader is returned.
func DecodeAuthors(r io.Reader) ([]Author, error) {
	src := &errRecorder{r: r}
	decoder := vcard.NewDecoder(src)
	var authors []Author

	for {
		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if src.err != nil {
				return authors, fmt.Errorf("%s: %w", config.ErrVCardParse, src.err)
			}
			// Every syntax error consumes at least one line, so the loop advances.
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompDirectory,
				config.LogKeyError, err)
			continue
		}

		author, ok := authorFromCard(card)
		if !ok {
			continue
		}
		authors = append(authors, author)
	}
	return authors, nil
}

// errRecorder remembers the first non-EOF error of the wrapped reader, which
// the vCard decoder does not distinguish from syntax errors.
type errRecorder struct {
	r   io.Reader
	err error
}

func (e *errRecorder) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && e.err == nil {
		e.err = err
	}
	return n, err
}

func authorFromCard(card vcard.Card) (Author, bool) {
	fullName := card.Value(config.VCardFN)
	family := ""
	if card.Get(config.VCardN) != nil {
		n := card.Name()
		family = n.FamilyName
		if fullName == "" {
			fullName = strings.TrimSpace(n.GivenName + " " + n.FamilyName)
		}
	}
	if family == "" {
		if fields := strings.Fields(fullName); len(fields) > 0 {
			family = fields[len(fields)-1]
		}
	}
	if family == "" {
		slog.Warn(config.MsgSkippedCard,
			config.LogKeyComponent, config.CompDirectory,
			config.LogKeyValue, fullName)
		return Author{}, false
	}

	bday := card.Value(config.VCardBDAY)
	born, err := parseBirthday(bday)
	if err != nil {
		slog.Warn(config.MsgSkippedDate,
			config.LogKeyComponent, config.CompDirectory,
			config.LogKeyName, fullName,
			config.LogKeyValue, bday,
			config.LogKeyError, err)
		return Author{}, false
	}

	return Author{
		Key:         family,
		FullName:    fullName,
		Nationality: card.Value(config.VCardNationality),
		NotableWork: card.Value(config.VCardNote),
		Born:        born,
	}, true
}

// parseBirthday accepts the two full-date BDAY layouts vCard producers emit.
func parseBirthday(value string) (CalendarDate, error) {
	if d, err := ParseCalendarDate(value); err == nil {
		return d, nil
	}
	t, err := time.Parse(config.DateFormatBasic, value)
	if err != nil {
		return CalendarDate{}, &ParseError{Input: value, Err: fmt.Errorf("%s: %w", config.ErrDateFormat, err)}
	}
	return NewCalendarDate(t.Year(), t.Month(), t.Day())
}

// AuthorCard converts an author into a vCard 4.0 card.
func AuthorCard(a Author) vcard.Card {
	card := make(vcard.Card)
	card.SetValue(config.VCardFN, a.FullName)

	given, family := splitName(a.FullName)
	card.SetName(&vcard.Name{GivenName: given, FamilyName: family})
	card.SetValue(config.VCardBDAY, a.Born.String())
	if a.NotableWork != "" {
		card.SetValue(config.VCardNote, a.NotableWork)
	}
	if a.Nationality != "" {
		card.SetValue(config.VCardNationality, a.Nationality)
	}
	vcard.ToV4(card)
	return card
}

// EncodeAuthor renders one author as a vCard document.
func EncodeAuthor(a Author) ([]byte, error) {
	var buf bytes.Buffer
	if err := vcard.NewEncoder(&buf).Encode(AuthorCard(a)); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrVCardEncode, err)
	}
	return buf.Bytes(), nil
}

func splitName(full string) (given, family string) {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", fields[0]
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
}
