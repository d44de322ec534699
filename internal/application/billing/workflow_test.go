package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thecarebot/facturacion-sii/internal/domain"
	"github.com/thecarebot/facturacion-sii/internal/domain/dte"
	"github.com/thecarebot/facturacion-sii/internal/domain/entity"
	"github.com/thecarebot/facturacion-sii/internal/domain/repository"
	"github.com/thecarebot/facturacion-sii/pkg/logger"
	"github.com/thecarebot/facturacion-sii/pkg/sii"
)

// ── fakes en memoria ──────────────────────────────────────────────────────────

// memFolioStore simula la tabla de rangos con el lock de fila a nivel de
// transacción: RunFolio serializa igual que SELECT ... FOR UPDATE.
type memFolioStore struct {
	mu     sync.Mutex
	rango  *entity.FolioRange
	getErr error
}

func (s *memFolioStore) RunFolio(ctx context.Context, fn func(repository.FolioRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

func (s *memFolioStore) Create(ctx context.Context, r *entity.FolioRange) error {
	s.rango = r
	return nil
}

func (s *memFolioStore) GetActiveForUpdate(ctx context.Context, rutEmisor string, tipo sii.DTEType) (*entity.FolioRange, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.rango == nil || s.rango.Estado != entity.FolioRangeActivo || s.rango.TipoDTE != tipo {
		return nil, nil
	}
	cp := *s.rango
	return &cp, nil
}

func (s *memFolioStore) UpdateFolioActual(ctx context.Context, id string, folio int64) error {
	s.rango.FolioActual = folio
	return nil
}

func (s *memFolioStore) MarkExhausted(ctx context.Context, id string) error {
	s.rango.Estado = entity.FolioRangeAgotado
	return nil
}

type memDocRepo struct {
	mu   sync.Mutex
	docs []*entity.TaxDocument
}

func (r *memDocRepo) Create(ctx context.Context, doc *entity.TaxDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
	return nil
}

func (r *memDocRepo) GetByID(ctx context.Context, id string) (*entity.TaxDocument, error) {
	return nil, domain.ErrNotFound
}

func (r *memDocRepo) ListByDoctor(ctx context.Context, doctorID string, limit int) ([]*entity.TaxDocument, error) {
	return r.docs, nil
}

type stubRenderer struct{ err error }

func (s stubRenderer) Render(doc *dte.Documento) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("<DTE>" + doc.ID() + "</DTE>"), nil
}

type stubSigner struct{ err error }

func (s stubSigner) Sign(xmlDTE []byte) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append(xmlDTE, []byte("<!--firmado-->")...), nil
}

type memLogRepo struct {
	mu   sync.Mutex
	logs []*entity.OperationLog
}

func (r *memLogRepo) Create(ctx context.Context, l *entity.OperationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, l)
	return nil
}

// stubPDF guarda el track id con el que se pidió el render para verificar que
// el timbre impreso ya lo conoce.
type stubPDF struct {
	err        error
	gotTrackID string
}

func (s *stubPDF) Generate(doc *dte.Documento) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.gotTrackID = doc.TrackID
	return []byte("%PDF-1.7 fake"), nil
}

type stubSubmitter struct {
	err     error
	trackID string
}

func (s stubSubmitter) Submit(ctx context.Context, signedXML []byte, doc *dte.Documento) (*SubmitResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &SubmitResult{TrackID: s.trackID, Estado: sii.EstadoAceptado}, nil
}

func testEmisor() dte.Emisor {
	return dte.Emisor{
		RUT:         "76123456-0",
		RazonSocial: "Clínica Dental Demo SpA",
		Giro:        "Servicios Odontológicos",
		Direccion:   "Av. Providencia 1234",
		Comuna:      "Providencia",
	}
}

func activeRange(current int64) *entity.FolioRange {
	return &entity.FolioRange{
		ID:          "rango-1",
		RUTEmisor:   "76123456-0",
		TipoDTE:     sii.DTEBoletaElectronica,
		FolioDesde:  1,
		FolioHasta:  5000,
		FolioActual: current,
		Estado:      entity.FolioRangeActivo,
	}
}

type workflowFixture struct {
	wf    *InvoiceWorkflow
	store *memFolioStore
	docs  *memDocRepo
	logs  *memLogRepo
	pdf   *stubPDF
}

func newFixture(store *memFolioStore, mods ...func(*InvoiceWorkflow)) *workflowFixture {
	docs := &memDocRepo{}
	logs := &memLogRepo{}
	pdf := &stubPDF{}
	var tx FolioTxRunner
	if store != nil {
		tx = store
	}
	wf := NewInvoiceWorkflow(
		NewFolioAllocator(tx),
		stubRenderer{},
		stubSigner{},
		pdf,
		stubSubmitter{},
		docs,
		logs,
		testEmisor(),
		dte.TasaIVADefault,
		logger.New(logger.Config{Env: "development", Level: "error"}),
	)
	for _, m := range mods {
		m(wf)
	}
	return &workflowFixture{wf: wf, store: store, docs: docs, logs: logs, pdf: pdf}
}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestGenerate_EmisionCompleta(t *testing.T) {
	store := &memFolioStore{rango: activeRange(100)}
	fx := newFixture(store)

	res := fx.wf.Generate(context.Background(), validInput())

	require.True(t, res.Success, "la emisión debió completarse: %v", res.Errors)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, int64(101), res.Folio, "el folio debe ser el siguiente del rango")
	assert.False(t, res.FolioDemo)
	assert.Equal(t, "35000", res.MontoNeto.String())
	assert.Equal(t, "6650", res.IVA.String())
	assert.Equal(t, "41650", res.MontoTotal.String())
	assert.Equal(t, sii.EstadoAceptado, res.EstadoSII)
	assert.NotEmpty(t, res.PDF, "una emisión exitosa entrega el PDF")
	assert.True(t, strings.HasPrefix(res.TrackID, "TRACK-"), "track id %q sin prefijo", res.TrackID)
	assert.Len(t, res.TrackID, len("TRACK-")+8)

	require.Len(t, fx.docs.docs, 1, "el documento emitido debe persistirse")
	doc := fx.docs.docs[0]
	assert.Equal(t, int64(101), doc.Folio)
	assert.Equal(t, "doctor-1", doc.DoctorID)
	assert.Contains(t, string(doc.XMLFirmado), "firmado",
		"el documento persistido debe llevar el XML firmado")

	assert.Equal(t, int64(101), store.rango.FolioActual, "el rango debe avanzar")
}

func TestGenerate_TrackIDDisponibleAlGenerarPDF(t *testing.T) {
	fx := newFixture(&memFolioStore{rango: activeRange(100)})

	res := fx.wf.Generate(context.Background(), validInput())

	require.True(t, res.Success)
	assert.Regexp(t, `^TRACK-[0-9A-F]{8}$`, fx.pdf.gotTrackID,
		"el PDF debe renderizarse con el track id ya asignado")
	assert.Equal(t, fx.pdf.gotTrackID, res.TrackID,
		"el track id impreso en el PDF y el del resultado deben coincidir")
}

func TestGenerate_AuditoriaRegistraDuracion(t *testing.T) {
	fx := newFixture(&memFolioStore{rango: activeRange(100)})

	res := fx.wf.Generate(context.Background(), validInput())

	require.True(t, res.Success)
	require.Len(t, fx.logs.logs, 1, "una emisión completa deja una entrada de auditoría")
	entrada := fx.logs.logs[0]
	assert.Equal(t, "emision_completa", entrada.Operacion)
	assert.True(t, entrada.Exito)
	assert.GreaterOrEqual(t, entrada.DuracionMs, int64(0),
		"la entrada debe registrar la duración de la operación")
}

func TestGenerate_ValidacionAcumulaErrores(t *testing.T) {
	fx := newFixture(&memFolioStore{rango: activeRange(100)})
	in := validInput()
	in.RUTReceptor = "x"
	in.Items = nil

	res := fx.wf.Generate(context.Background(), in)

	assert.False(t, res.Success)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Errors, "RUT del receptor inválido")
	assert.Contains(t, res.Errors, "el documento no tiene líneas de detalle")
	assert.Empty(t, res.PDF, "un fallo no entrega PDF parcial")
	assert.Empty(t, fx.docs.docs, "un fallo no persiste documento")
}

func TestGenerate_RangoAgotadoFalla(t *testing.T) {
	rango := activeRange(5000) // FolioActual == FolioHasta
	store := &memFolioStore{rango: rango}
	fx := newFixture(store)

	res := fx.wf.Generate(context.Background(), validInput())

	assert.False(t, res.Success)
	assert.Equal(t, StatusFailed, res.Status)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "rango de folios agotado")
	assert.Equal(t, entity.FolioRangeAgotado, rango.Estado,
		"el agotamiento debe quedar persistido aunque la emisión falle")

	// Con el rango ya marcado agotado, las emisiones siguientes también fallan.
	res2 := fx.wf.Generate(context.Background(), validInput())
	assert.False(t, res2.Success)
	require.NotEmpty(t, res2.Errors)
	assert.Contains(t, res2.Errors[0], "no hay rango de folios activo")
}

func TestGenerate_SinRangoActivoFalla(t *testing.T) {
	fx := newFixture(&memFolioStore{})

	res := fx.wf.Generate(context.Background(), validInput())

	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "no hay rango de folios activo")
}

func TestGenerate_SinAlmacenamientoUsaFolioDemo(t *testing.T) {
	fx := newFixture(nil) // sin tx runner: modo demo

	res := fx.wf.Generate(context.Background(), validInput())

	require.True(t, res.Success, "el modo demo debe completar la emisión: %v", res.Errors)
	assert.True(t, res.FolioDemo, "el folio debe marcarse como no autoritativo")
	assert.GreaterOrEqual(t, res.Folio, int64(demoFolioMin))
	assert.LessOrEqual(t, res.Folio, int64(demoFolioMax))
}

func TestGenerate_ErrorDeConsultaDegradaAFolioDemo(t *testing.T) {
	store := &memFolioStore{getErr: errors.New("connection refused")}
	fx := newFixture(store)

	res := fx.wf.Generate(context.Background(), validInput())

	require.True(t, res.Success)
	assert.True(t, res.FolioDemo)
}

func TestGenerate_FalloEnFirmaCortaElPipeline(t *testing.T) {
	fx := newFixture(&memFolioStore{rango: activeRange(100)}, func(wf *InvoiceWorkflow) {
		wf.signer = stubSigner{err: errors.New("xml malformado")}
	})

	res := fx.wf.Generate(context.Background(), validInput())

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "firma del documento")
	assert.Empty(t, res.PDF)
	assert.Empty(t, fx.docs.docs)
}

func TestGenerate_FalloEnEnvioNoPersiste(t *testing.T) {
	fx := newFixture(&memFolioStore{rango: activeRange(100)}, func(wf *InvoiceWorkflow) {
		wf.submitter = stubSubmitter{err: errors.New("timeout")}
	})

	res := fx.wf.Generate(context.Background(), validInput())

	assert.False(t, res.Success)
	assert.Contains(t, res.Errors[0], "envío al SII")
	assert.Empty(t, fx.docs.docs)
}

func TestGenerate_FoliosConcurrentesSonUnicos(t *testing.T) {
	const n = 20
	store := &memFolioStore{rango: activeRange(0)}
	fx := newFixture(store)

	results := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := fx.wf.Generate(context.Background(), validInput())
			if res.Success {
				results <- res.Folio
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for folio := range results {
		assert.False(t, seen[folio], "folio %d asignado dos veces", folio)
		seen[folio] = true
	}
	assert.Len(t, seen, n, "las %d emisiones deben obtener folios distintos", n)
	assert.Equal(t, int64(n), store.rango.FolioActual)
}

func TestNewTrackID(t *testing.T) {
	a := NewTrackID()
	b := NewTrackID()
	assert.Regexp(t, `^TRACK-[0-9A-F]{8}$`, a)
	assert.NotEqual(t, a, b, "dos track id consecutivos no deben repetirse")
}

func TestGenerate_EstadoFinalEnResultado(t *testing.T) {
	// El folio aleatorio del modo demo cabe en la banda documentada incluso
	// repitiendo la emisión varias veces.
	fx := newFixture(nil)
	for i := 0; i < 5; i++ {
		res := fx.wf.Generate(context.Background(), validInput())
		require.True(t, res.Success)
		assert.True(t, res.Folio >= demoFolioMin && res.Folio <= demoFolioMax,
			fmt.Sprintf("folio demo fuera de banda: %d", res.Folio))
	}
}
