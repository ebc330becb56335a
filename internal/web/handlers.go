package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/benoitkugler/equimark/internal/canvas"
	"github.com/benoitkugler/equimark/internal/diagram"
	"github.com/benoitkugler/equimark/internal/export"
	"github.com/benoitkugler/equimark/internal/mail"
	"github.com/benoitkugler/equimark/internal/raster"
	"github.com/benoitkugler/equimark/internal/session"
)

// deliveryTimeout bounds the single SendGrid attempt.
const deliveryTimeout = 30 * time.Second

type pageData struct {
	LeftW, LeftH   int
	RightW, RightH int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var data pageData
	data.LeftW, data.LeftH = s.diagrams.Size(diagram.Left)
	data.RightW, data.RightH = s.diagrams.Size(diagram.Right)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.log.Warn("Editor page failed", zap.Error(err))
	}
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(r.PathValue("side"), ".png")
	side, err := diagram.ParseSide(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(s.diagrams.PNG(side))
}

type saveRequest struct {
	Date   string          `json:"date"`
	Horse  string          `json:"horse"`
	Amount float64         `json:"amount"`
	Paid   bool            `json:"paid"`
	Email  string          `json:"email"`
	Notes  string          `json:"notes"`
	Left   json.RawMessage `json:"left"`
	Right  json.RawMessage `json:"right"`
}

// record validates the form fields. The horse name ends up in file
// names, hence the separator check.
func (q saveRequest) record() (session.Record, error) {
	horse := strings.TrimSpace(q.Horse)
	if horse == "" {
		return session.Record{}, errors.New("horse name is required")
	}
	if strings.ContainsAny(horse, `/\`) {
		return session.Record{}, fmt.Errorf("invalid horse name %q", horse)
	}
	if q.Amount < 0 {
		return session.Record{}, fmt.Errorf("negative amount %v", q.Amount)
	}
	rec := session.Record{
		Date:   time.Now(),
		Horse:  horse,
		Amount: q.Amount,
		Paid:   q.Paid,
		Email:  strings.TrimSpace(q.Email),
		Notes:  q.Notes,
	}
	if q.Date != "" {
		d, err := time.Parse("2006-01-02", q.Date)
		if err != nil {
			return session.Record{}, fmt.Errorf("invalid date %q", q.Date)
		}
		rec.Date = d
	}
	return rec, nil
}

type skippedStroke struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type sideResult struct {
	File    string          `json:"file"`
	Drawn   int             `json:"drawn"`
	Skipped []skippedStroke `json:"skipped,omitempty"`
}

type saveResponse struct {
	Saved      bool                  `json:"saved"`
	Sides      map[string]sideResult `json:"sides"`
	PDF        string                `json:"pdf,omitempty"`
	EmailSent  bool                  `json:"emailSent"`
	EmailError string                `json:"emailError,omitempty"`
}

// handleSave is the whole session pipeline: annotate both diagrams,
// append the record, then the two best-effort steps, sheet and email.
// Once the record is appended nothing can undo the save.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	rec, err := req.record()
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	resp := saveResponse{Sides: map[string]sideResult{}}
	payloads := [2]json.RawMessage{diagram.Left: req.Left, diagram.Right: req.Right}
	var images [2][]byte
	for _, side := range diagram.Sides() {
		buf, res, err := s.annotateSide(rec, side, payloads[side])
		if err != nil {
			s.fail(w, http.StatusInternalServerError, err)
			return
		}
		images[side] = buf
		resp.Sides[side.String()] = res
	}

	if err := s.store.Append(rec); err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	resp.Saved = true
	s.log.Info("Session saved", zap.String("horse", rec.Horse), zap.String("date", rec.DateString()))

	if s.cfg.PDFSheet {
		resp.PDF = s.writeSheet(rec, images[diagram.Left], images[diagram.Right])
	}
	if rec.Email != "" {
		resp.EmailSent, resp.EmailError = s.deliverSummary(r.Context(), rec, images[diagram.Left], images[diagram.Right])
	}
	writeJSON(w, http.StatusOK, resp)
}

// annotateSide draws one side's payload over its background and writes
// the result under DataDir. An unreadable payload is treated as empty,
// like a canvas the user never touched.
func (s *Server) annotateSide(rec session.Record, side diagram.Side, raw json.RawMessage) ([]byte, sideResult, error) {
	payload, err := canvas.Decode(raw)
	if err != nil {
		s.log.Warn("Discarding unreadable canvas payload", zap.Stringer("side", side), zap.Error(err))
		payload = canvas.Payload{}
	}
	img, rep := raster.Annotate(s.diagrams.Image(side), payload)
	for _, sk := range rep.Skipped {
		s.log.Warn("Skipping malformed stroke",
			zap.Stringer("side", side), zap.Int("index", sk.Index), zap.String("reason", sk.Reason))
	}
	buf, err := raster.EncodePNG(img)
	if err != nil {
		return nil, sideResult{}, fmt.Errorf("encode %s side: %w", side, err)
	}
	name := fmt.Sprintf("%s_%s.png", rec.Horse, side)
	if err := os.WriteFile(filepath.Join(s.cfg.DataDir, name), buf, 0o644); err != nil {
		return nil, sideResult{}, fmt.Errorf("save %s side: %w", side, err)
	}
	res := sideResult{File: name, Drawn: rep.Drawn}
	for _, sk := range rep.Skipped {
		res.Skipped = append(res.Skipped, skippedStroke{Index: sk.Index, Reason: sk.Reason})
	}
	return buf, res, nil
}

// writeSheet renders the printable sheet next to the images. Failures
// are warnings, the record is already on disk.
func (s *Server) writeSheet(rec session.Record, left, right []byte) string {
	buf, err := export.SessionSheet(rec, left, right)
	if err != nil {
		s.log.Warn("Session sheet failed", zap.Error(err))
		return ""
	}
	name := rec.Horse + "_summary.pdf"
	if err := os.WriteFile(filepath.Join(s.cfg.DataDir, name), buf, 0o644); err != nil {
		s.log.Warn("Session sheet failed", zap.Error(err))
		return ""
	}
	return name
}

// deliverSummary makes the single delivery attempt.
func (s *Server) deliverSummary(ctx context.Context, rec session.Record, left, right []byte) (sent bool, failure string) {
	msg, err := mail.ComposeSummary(mail.SummaryInput{
		Record:      rec,
		Left:        left,
		Right:       right,
		Logo:        s.logo,
		EmbedImages: s.cfg.EmbedImages,
	})
	if err != nil {
		s.log.Warn("Email failed to send", zap.Error(err))
		return false, err.Error()
	}
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()
	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Warn("Email failed to send", zap.String("to", rec.Email), zap.Error(err))
		return false, err.Error()
	}
	s.log.Info("Email sent to client", zap.String("to", rec.Email))
	return true, ""
}

type listEntry struct {
	Date   string  `json:"date"`
	Horse  string  `json:"horse"`
	Amount float64 `json:"amount"`
	Paid   bool    `json:"paid"`
	Email  string  `json:"email,omitempty"`
	Notes  string  `json:"notes,omitempty"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List()
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]listEntry, len(recs))
	for i, rec := range recs {
		out[i] = listEntry{
			Date:   rec.DateString(),
			Horse:  rec.Horse,
			Amount: rec.Amount,
			Paid:   rec.Paid,
			Email:  rec.Email,
			Notes:  rec.Notes,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
