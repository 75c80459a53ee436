package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"confirmflow/confirm"
	"confirmflow/order"
	"confirmflow/present"
)

type stubFinder struct {
	orders map[string]order.Order
	err    error
	calls  []string
}

func (s *stubFinder) Lookup(_ context.Context, id string) (order.Order, error) {
	s.calls = append(s.calls, id)
	if s.err != nil {
		return order.Order{}, s.err
	}
	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return o, nil
}

type panickyFinder struct{}

func (panickyFinder) Lookup(context.Context, string) (order.Order, error) {
	panic("sheet row index out of range")
}

func sampleOrder() order.Order {
	return order.Order{
		Number:       "BORD-001",
		Customer:     "Juana Pérez",
		Salesperson:  "Marta",
		DeliveryDate: "2025-03-14",
		DesignName:   "Escudo Club",
		ThreadColors: "Azul, Blanco",
		Measurements: "8x8 cm",
		Position:     "Pecho izquierdo",
		Attachments: [order.AttachmentSlots]string{
			"https://cdn.example.com/disenos/bord-001-frente.png",
			"https://drive.example.com/file/d/abc/view",
		},
	}
}

func newTestServer(t *testing.T, finder OrderFinder) (*Server, *confirm.Signer) {
	t.Helper()

	signer := confirm.NewSigner("test-secret", time.Hour)
	srv, err := NewServer(finder, present.NewPresenter(present.ExtensionChecker{}, nil), confirm.NewFlow(), signer, zap.NewNop())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, signer
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Fatalf("expected body to contain %q, got:\n%s", want, body)
		}
	}
}

func assertNotContains(t *testing.T, body string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(body, u) {
			t.Fatalf("expected body not to contain %q, got:\n%s", u, body)
		}
	}
}

func TestHandlePage_OrderFound(t *testing.T) {
	finder := &stubFinder{orders: map[string]order.Order{"BORD-001": sampleOrder()}}
	srv, _ := newTestServer(t, finder)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/?pedido=BORD-001", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	assertContains(t, body,
		"Pedido BORD-001 encontrado",
		"Información del Pedido",
		"Especificaciones",
		"Juana Pérez",
		"Pecho izquierdo",
		`<img src="https://cdn.example.com/disenos/bord-001-frente.png"`,
		`>Ver Diseño 2</a>`,
		"¿La información es correcta?",
		`name="token"`,
	)
	if len(finder.calls) != 1 || finder.calls[0] != "BORD-001" {
		t.Fatalf("expected one lookup for BORD-001, got %v", finder.calls)
	}
}

func TestHandlePage_AbsentFieldsShowFallback(t *testing.T) {
	o := order.Order{Number: "BORD-002", Customer: "Luis Gómez", DeliveryDate: "nan"}
	srv, _ := newTestServer(t, &stubFinder{orders: map[string]order.Order{"BORD-002": o}})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/?pedido=BORD-002", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	assertContains(t, body, "Luis Gómez", present.Fallback, "Sin diseños adjuntos")
	assertNotContains(t, body, ">nan<")
}

func TestHandlePage_OrderNotFound(t *testing.T) {
	srv, _ := newTestServer(t, &stubFinder{orders: map[string]order.Order{"BORD-001": sampleOrder()}})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/?pedido=BORD-999", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := rec.Body.String()
	assertContains(t, body, "Pedido BORD-999 no encontrado")
	assertNotContains(t, body, "Información del Pedido", "¿La información es correcta?")
}

func TestHandlePage_NoOrderShowsPrompt(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"no query", "/"},
		{"blank manual entry", "/?pedido="},
		{"whitespace manual entry", "/?pedido=%20%20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &stubFinder{orders: map[string]order.Order{"": {Customer: "Fila sin número"}}}
			srv, _ := newTestServer(t, finder)

			rec := serve(srv, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			assertContains(t, rec.Body.String(), "?pedido=BORD-001", `name="pedido"`)
			assertNotContains(t, rec.Body.String(), "Fila sin número")
			if len(finder.calls) != 0 {
				t.Fatalf("expected no lookup, got %v", finder.calls)
			}
		})
	}
}

func TestHandlePage_LookupFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		want   string
	}{
		{"connection", order.ErrConnection, http.StatusBadGateway, "Error en conexión"},
		{"sheet missing", order.ErrSheetNotFound, http.StatusBadGateway, "Hoja de pedidos no encontrada"},
		{"malformed", order.ErrMalformedRow, http.StatusBadGateway, "formato inválido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, &stubFinder{err: tt.err})

			rec := serve(srv, httptest.NewRequest(http.MethodGet, "/?pedido=BORD-001", nil))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			assertContains(t, rec.Body.String(), tt.want)
			assertNotContains(t, rec.Body.String(), "Información del Pedido")
		})
	}
}

func TestHandlePage_RequestChangesChoice(t *testing.T) {
	srv, _ := newTestServer(t, &stubFinder{orders: map[string]order.Order{"BORD-001": sampleOrder()}})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/?pedido=BORD-001&opcion=cambios", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	assertContains(t, body, `name="cambios"`, `name="contacto"`)
	assertNotContains(t, body, `name="nombre"`)
}

func TestHandleConfirm_Confirm(t *testing.T) {
	srv, signer := newTestServer(t, &stubFinder{orders: map[string]order.Order{"BORD-001": sampleOrder()}})
	token, err := signer.Issue("BORD-001")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := serve(srv, postForm("/confirmar", url.Values{
		"token":  {token},
		"pedido": {"BORD-001"},
		"opcion": {"confirmar"},
		"nombre": {"Juana Pérez"},
		"email":  {"juana@example.com"},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	assertContains(t, body, "¡Confirmación exitosa!", "Nos contactaremos para proceder con producción")
	assertNotContains(t, body, "Confirmar pedido</button>")
}

func TestHandleConfirm_RequestChanges(t *testing.T) {
	srv, signer := newTestServer(t, &stubFinder{orders: map[string]order.Order{"BORD-001": sampleOrder()}})
	token, _ := signer.Issue("BORD-001")

	rec := serve(srv, postForm("/confirmar", url.Values{
		"token":    {token},
		"opcion":   {"cambios"},
		"cambios":  {"Cambiar hilo a dorado"},
		"contacto": {"555-0101"},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assertContains(t, rec.Body.String(), "Cambios enviados", "Ajustaremos según sus indicaciones")
}

func TestHandleConfirm_MissingFieldsKeepsForm(t *testing.T) {
	srv, signer := newTestServer(t, &stubFinder{orders: map[string]order.Order{"BORD-001": sampleOrder()}})
	token, _ := signer.Issue("BORD-001")

	rec := serve(srv, postForm("/confirmar", url.Values{
		"token":  {token},
		"opcion": {"confirmar"},
		"nombre": {"Juana Pérez"},
		"email":  {"   "},
	}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	body := rec.Body.String()
	assertContains(t, body, "Complete todos los campos", `value="Juana Pérez"`, "Confirmar pedido</button>")
	assertNotContains(t, body, "¡Confirmación exitosa!")
}

func TestHandleConfirm_InvalidToken(t *testing.T) {
	finder := &stubFinder{orders: map[string]order.Order{"BORD-001": sampleOrder()}}
	srv, _ := newTestServer(t, finder)

	rec := serve(srv, postForm("/confirmar", url.Values{
		"token":  {"not-a-token"},
		"pedido": {"BORD-001"},
		"opcion": {"confirmar"},
		"nombre": {"Juana"},
		"email":  {"juana@example.com"},
	}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	assertContains(t, rec.Body.String(), "El formulario expiró")
	if len(finder.calls) != 0 {
		t.Fatalf("expected no lookup for a rejected form, got %v", finder.calls)
	}
}

func TestHandleConfirm_WrongMethod(t *testing.T) {
	srv, _ := newTestServer(t, &stubFinder{})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/confirmar", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestRecoverer_RendersCriticalError(t *testing.T) {
	srv, _ := newTestServer(t, panickyFinder{})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/?pedido=BORD-001", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	assertContains(t, rec.Body.String(), "ERROR CRÍTICO", "sheet row index out of range", "<pre>")
}

func TestRequestLogger_RequestID(t *testing.T) {
	srv, _ := newTestServer(t, &stubFinder{})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec = serve(srv, req)
	if got := rec.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("expected propagated request id, got %q", got)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("unexpected health body %q", rec.Body.String())
	}
}

func TestSheetsSource_MissingCredentialIsReportedOnPage(t *testing.T) {
	source := &sheetsSource{sheetID: "1AbCdEf", worksheet: order.DefaultWorksheet}
	srv, _ := newTestServer(t, order.NewService(source, nil))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/?pedido=BORD-001", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	assertContains(t, rec.Body.String(), "No se configuraron las credenciales")
	assertNotContains(t, rec.Body.String(), "Información del Pedido")
}

func writeOrdersWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(order.DefaultWorksheet); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	rows := [][]interface{}{
		{"Número Orden", "Cliente", "Vendedor", "Fecha Entrega", "Nombre Diseño", "Colores de Hilos", "Medidas Bordado", "Posición Bordado", "Diseño 1", "Diseño 2"},
		{"", "Fila sin número"},
		{"BORD-001", "Juana Pérez", "Marta", "2025-03-14", "Escudo Club", "Azul, Blanco", "8x8 cm", "Pecho izquierdo", "https://cdn.example.com/disenos/bord-001-frente.png", "boceto.pdf"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(order.DefaultWorksheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "ordenes.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestWorkbookBackedPage(t *testing.T) {
	path := writeOrdersWorkbook(t)
	srv, _ := newTestServer(t, order.NewService(order.NewXLSXConnector(path, ""), nil))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/?pedido=BORD-001", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assertContains(t, rec.Body.String(), "Juana Pérez", "Escudo Club", ">Ver Diseño 2</a>")

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/?pedido=bord-001", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected exact match to reject other casing, got %d", rec.Code)
	}
}

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "lookup"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Fatalf("expected %s command, got %v (%v)", name, cmd, err)
		}
	}
}

func writeLookupConfig(t *testing.T) string {
	t.Helper()

	path := writeOrdersWorkbook(t)
	cfgPath := filepath.Join(t.TempDir(), "confirmflow.yaml")
	cfg := "source:\n  kind: xlsx\n  xlsx_path: " + path + "\nattachments:\n  probe: false\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ORDER_SOURCE", "")
	t.Setenv("ORDER_XLSX_PATH", "")
	t.Setenv("LOG_LEVEL", "error")
	return cfgPath
}

func TestLookupCommand_BlankNumber(t *testing.T) {
	cfgPath := writeLookupConfig(t)

	for _, pedido := range []string{"", "   "} {
		var out bytes.Buffer
		root := newRootCmd()
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs([]string{"--config", cfgPath, "lookup", pedido})

		err := root.Execute()
		if !errors.Is(err, order.ErrBlankID) {
			t.Fatalf("lookup %q: expected ErrBlankID, got %v", pedido, err)
		}
		if strings.Contains(out.String(), "Fila sin número") {
			t.Fatalf("lookup %q printed a row without number:\n%s", pedido, out.String())
		}
	}
}

func TestLookupCommand(t *testing.T) {
	cfgPath := writeLookupConfig(t)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--config", cfgPath, "lookup", "BORD-001"})

	if err := root.Execute(); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Pedido BORD-001", "Cliente: Juana Pérez", "Diseño 1 [image]", "Diseño 2 [link] boceto.pdf"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}
