package main

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"confirmflow/confirm"
	"confirmflow/order"
	"confirmflow/present"
)

//go:embed templates/*.html
var templateFS embed.FS

// OrderFinder resolves an order for one page load.
type OrderFinder interface {
	Lookup(ctx context.Context, id string) (order.Order, error)
}

// Server renders the confirmation page.
type Server struct {
	orders    OrderFinder
	presenter *present.Presenter
	flow      *confirm.Flow
	signer    *confirm.Signer
	logger    *zap.Logger
	pages     *template.Template
}

// NewServer wires the page handlers.
func NewServer(orders OrderFinder, presenter *present.Presenter, flow *confirm.Flow, signer *confirm.Signer, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pages, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		orders:    orders,
		presenter: presenter,
		flow:      flow,
		signer:    signer,
		logger:    logger,
		pages:     pages,
	}, nil
}

// Routes returns the root handler including logging and panic recovery.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/confirmar", s.handle(s.handleConfirm))
	mux.Handle("/", s.handle(s.handlePage))

	return requestLogger(s.recoverer(mux), s.logger)
}

// handlerFunc returns its error to a single renderer instead of writing it.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// pageError carries the order number a failing page load was about.
type pageError struct {
	pedido string
	err    error
}

func (e *pageError) Error() string { return e.err.Error() }
func (e *pageError) Unwrap() error { return e.err }

func (s *Server) handle(fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		var pedido string
		var pe *pageError
		if errors.As(err, &pe) {
			pedido = pe.pedido
		}
		f := describe(err, pedido)

		s.logger.Warn("page failed",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("code", f.Code),
			zap.String("pedido", pedido),
			zap.Error(err))

		s.render(w, f.Status, pageData{Pedido: pedido, Failure: &f})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) error {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return nil
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil
	}

	pedido := r.URL.Query().Get("pedido")
	if order.IsBlankID(pedido) {
		s.render(w, http.StatusOK, pageData{Prompt: true})
		return nil
	}

	choice, ok := confirm.ParseChoice(r.URL.Query().Get("opcion"))
	if !ok {
		choice = confirm.ChoiceConfirm
	}

	data, err := s.orderPage(r.Context(), pedido)
	if err != nil {
		return err
	}
	data.Choice = choice
	data.State = s.flow.Start(choice)

	s.render(w, http.StatusOK, data)
	return nil
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return nil
	}

	pedido, err := s.signer.Verify(r.PostForm.Get("token"))
	if err != nil {
		return &pageError{pedido: r.PostForm.Get("pedido"), err: err}
	}

	choice, ok := confirm.ParseChoice(r.PostForm.Get("opcion"))
	if !ok {
		http.Error(w, "invalid choice", http.StatusBadRequest)
		return nil
	}

	data, err := s.orderPage(r.Context(), pedido)
	if err != nil {
		return err
	}

	sub := confirm.Submission{
		Choice:      choice,
		Name:        r.PostForm.Get("nombre"),
		Email:       r.PostForm.Get("email"),
		Description: r.PostForm.Get("cambios"),
		Contact:     r.PostForm.Get("contacto"),
	}
	data.Choice = choice
	data.Form = sub

	outcome, err := s.flow.Submit(sub)
	data.State = outcome.State
	if err != nil {
		if !errors.Is(err, confirm.ErrValidation) {
			return &pageError{pedido: pedido, err: err}
		}
		data.FormError = "Complete todos los campos"
		s.render(w, http.StatusUnprocessableEntity, data)
		return nil
	}

	s.logger.Info("decision acknowledged",
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.String("pedido", pedido),
		zap.String("choice", string(choice)),
		zap.String("reference", outcome.Reference))

	data.Outcome = &outcome
	s.render(w, http.StatusOK, data)
	return nil
}

// orderPage performs the lookup and presentation for one page load.
func (s *Server) orderPage(ctx context.Context, pedido string) (pageData, error) {
	o, err := s.orders.Lookup(ctx, pedido)
	if err != nil {
		return pageData{}, &pageError{pedido: pedido, err: err}
	}

	token, err := s.signer.Issue(o.Number)
	if err != nil {
		return pageData{}, &pageError{pedido: pedido, err: err}
	}

	return pageData{
		Pedido: pedido,
		Found:  true,
		View:   s.presenter.Render(ctx, o),
		Token:  token,
	}, nil
}

type criticalError struct {
	Message string
	Trace   string
}

type pageData struct {
	Pedido    string
	Prompt    bool
	Failure   *failure
	Critical  *criticalError
	Found     bool
	View      present.View
	Token     string
	Choice    confirm.Choice
	State     confirm.State
	Form      confirm.Submission
	FormError string
	Outcome   *confirm.Outcome
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "page.html", data); err != nil {
		s.logger.Error("render page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
