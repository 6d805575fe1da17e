package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tartampluch/go-birthday-web/internal/config"
	"github.com/tartampluch/go-birthday-web/internal/engine"
	"github.com/tartampluch/go-birthday-web/internal/locale"
)

type profilePage struct {
	Lang   string
	Title  string
	MyName string
	MyAge  int
}

type authorsPage struct {
	Lang    string
	Title   string
	Authors []engine.Author
}

type authorPage struct {
	Lang   string
	Back   string
	Author engine.Author
}

func (s *Server) handleHelloWorld(w http.ResponseWriter, r *http.Request) {
	loc := s.translator.Localizer(r.Header.Get(config.HeaderAcceptLanguage))
	s.writeText(w, r, http.StatusOK, locale.Translate(loc, config.TKeyHelloWorld, nil))
}

func (s *Server) handleCurrentDate(w http.ResponseWriter, r *http.Request) {
	loc := s.translator.Localizer(r.Header.Get(config.HeaderAcceptLanguage))
	now := s.clock.Now()
	s.writeText(w, r, http.StatusOK, locale.Translate(loc, config.TKeyTodayIs, map[string]any{
		"Day":   fmt.Sprintf(config.FormatDay, now.Day()),
		"Month": locale.MonthName(loc, now.Month()),
		"Year":  now.Year(),
	}))
}

// handleMyAge answers with the bare age. The route only matches digits, so a
// conversion failure means an overflowing number and is treated as no match.
func (s *Server) handleMyAge(w http.ResponseWriter, r *http.Request) {
	year, errY := strconv.Atoi(chi.URLParam(r, config.ParamYear))
	month, errM := strconv.Atoi(chi.URLParam(r, config.ParamMonth))
	day, errD := strconv.Atoi(chi.URLParam(r, config.ParamDay))
	if err := errors.Join(errY, errM, errD); err != nil {
		http.Error(w, config.HTTPMsgNotFound, http.StatusNotFound)
		return
	}

	age := engine.ComputeAge(year, month, day, s.clock.Now())
	s.writeText(w, r, http.StatusOK, strconv.Itoa(age))
}

func (s *Server) handleNextBirthday(w http.ResponseWriter, r *http.Request) {
	text := chi.URLParam(r, config.ParamBirthday)
	days, err := engine.ComputeCountdown(text, s.clock.Now())
	if err != nil {
		s.badDate(w, r, text, err)
		return
	}

	loc := s.translator.Localizer(r.Header.Get(config.HeaderAcceptLanguage))
	s.writeText(w, r, http.StatusOK, locale.Translate(loc, config.TKeyDaysUntil, map[string]any{"Days": days}))
}

func (s *Server) handleNextBirthdayCalendar(w http.ResponseWriter, r *http.Request) {
	text := chi.URLParam(r, config.ParamBirthday)
	date, err := engine.ParseCalendarDate(text)
	if err != nil {
		s.badDate(w, r, text, err)
		return
	}

	s.serveCalendar(w, r, []engine.Anniversary{{Name: date.String(), Date: date}})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	lang := s.translator.Match(r.Header.Get(config.HeaderAcceptLanguage))
	loc := s.translator.Localizer(lang)
	s.writeHTML(w, r, "profile.html", profilePage{
		Lang:   lang,
		Title:  locale.Translate(loc, config.TKeyProfileTitle, nil),
		MyName: config.ProfileName,
		MyAge:  config.ProfileAge,
	})
}

func (s *Server) handleAuthors(w http.ResponseWriter, r *http.Request) {
	lang := s.translator.Match(r.Header.Get(config.HeaderAcceptLanguage))
	loc := s.translator.Localizer(lang)
	s.writeHTML(w, r, "authors.html", authorsPage{
		Lang:    lang,
		Title:   locale.Translate(loc, config.TKeyAuthorsTitle, nil),
		Authors: s.directory.All(),
	})
}

func (s *Server) handleAuthorsCalendar(w http.ResponseWriter, r *http.Request) {
	s.serveCalendar(w, r, s.directory.Anniversaries())
}

func (s *Server) handleAuthor(w http.ResponseWriter, r *http.Request) {
	author, ok := s.lookupAuthor(w, r)
	if !ok {
		return
	}

	lang := s.translator.Match(r.Header.Get(config.HeaderAcceptLanguage))
	loc := s.translator.Localizer(lang)
	s.writeHTML(w, r, "author.html", authorPage{
		Lang:   lang,
		Back:   locale.Translate(loc, config.TKeyAuthorsTitle, nil),
		Author: author,
	})
}

func (s *Server) handleAuthorVCard(w http.ResponseWriter, r *http.Request) {
	author, ok := s.lookupAuthor(w, r)
	if !ok {
		return
	}

	data, err := engine.EncodeAuthor(author)
	if err != nil {
		s.logger.ErrorContext(r.Context(), config.ErrVCardEncode,
			config.LogKeyKey, author.Key,
			config.LogKeyError, err)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}
	s.writeCached(w, r, data, config.MimeTextVCard, author.Key+config.FormatVCardFileSuffix)
}

// lookupAuthor resolves the last_name parameter and writes a 404 on a miss.
func (s *Server) lookupAuthor(w http.ResponseWriter, r *http.Request) (engine.Author, bool) {
	key := chi.URLParam(r, config.ParamAuthorsLastName)
	author, ok := s.directory.Lookup(key)
	if ok {
		return author, true
	}

	s.metrics.AuthorMisses.Inc()
	s.logger.DebugContext(r.Context(), config.MsgAuthorMissing, config.LogKeyKey, key)

	loc := s.translator.Localizer(r.Header.Get(config.HeaderAcceptLanguage))
	s.writeText(w, r, http.StatusNotFound, locale.Translate(loc, config.TKeyAuthorNotFound, map[string]any{"Key": key}))
	return engine.Author{}, false
}

func (s *Server) serveCalendar(w http.ResponseWriter, r *http.Request, entries []engine.Anniversary) {
	loc := s.translator.Localizer(r.Header.Get(config.HeaderAcceptLanguage))
	builder := &engine.CalendarBuilder{
		Clock: s.clock,
		FormatSummary: func(name string) string {
			return locale.Translate(loc, config.TKeyEvtAnniversary, map[string]any{"Name": name})
		},
	}

	data, err := builder.Build(entries)
	if err != nil {
		s.logger.ErrorContext(r.Context(), config.ErrICalEncode, config.LogKeyError, err)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}
	s.writeCached(w, r, data, config.MimeTextCalendar, "")
}

// badDate maps a ParseError to 400. Anything else is a server fault.
func (s *Server) badDate(w http.ResponseWriter, r *http.Request, text string, err error) {
	if !errors.Is(err, engine.ErrInvalidDate) {
		s.logger.ErrorContext(r.Context(), config.HTTPMsgInternalErr, config.LogKeyError, err)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}

	s.metrics.ParseFailures.Inc()
	s.logger.DebugContext(r.Context(), config.MsgBadDate,
		config.LogKeyValue, text,
		config.LogKeyError, err)

	loc := s.translator.Localizer(r.Header.Get(config.HeaderAcceptLanguage))
	s.writeText(w, r, http.StatusBadRequest, locale.Translate(loc, config.TKeyBadRequest, nil))
}
