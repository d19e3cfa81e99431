package verification

import (
	"context"

	"go.uber.org/zap"

	"github.com/doctoralliance/patient-dedupe/patients"
)

// minTextLength is the point below which the text layer is considered
// unusable (likely a scanned image without OCR).
const minTextLength = 50

// Verifier produces MRN/DOB candidates for one patient. An empty result is a
// valid outcome and must be tolerated by callers.
type Verifier interface {
	VerifyPatient(ctx context.Context, patientId string) (Fields, error)
}

// Service chains document selection, retrieval, text scraping and LLM field
// extraction into the verifier contract.
type Service struct {
	patients  patients.Service
	retriever *Retriever
	extractor FieldExtractor
	logger    *zap.SugaredLogger
}

func NewService(patientsService patients.Service, retriever *Retriever, extractor FieldExtractor, logger *zap.SugaredLogger) *Service {
	return &Service{
		patients:  patientsService,
		retriever: retriever,
		extractor: extractor,
		logger:    logger,
	}
}

var _ Verifier = (*Service)(nil)

func (s *Service) VerifyPatient(ctx context.Context, patientId string) (Fields, error) {
	orders, err := s.patients.ListOrders(ctx, patientId)
	if err != nil {
		s.logger.Warnw("failed to list orders for verification", "patientId", patientId, "error", err)
		return Fields{}, nil
	}

	document := SelectReferenceDocument(orders)
	if document == nil {
		s.logger.Infow("no reference document found", "patientId", patientId, "orders", len(orders))
		return Fields{}, nil
	}
	s.logger.Infow("selected reference document", "patientId", patientId, "documentName", document.DocumentName)

	content, err := s.retriever.Fetch(ctx, *document)
	if err != nil {
		s.logger.Warnw("failed to fetch reference document", "patientId", patientId, "documentId", document.Id, "error", err)
		return Fields{}, nil
	}

	text := ScrapeTextLayer(content)
	if len(text) < minTextLength {
		s.logger.Warnw("insufficient text layer in reference document", "patientId", patientId, "chars", len(text))
		return Fields{}, nil
	}

	fields, err := s.extractor.ExtractFields(ctx, text)
	if err != nil {
		s.logger.Warnw("field extraction failed", "patientId", patientId, "error", err)
		return Fields{}, nil
	}
	return fields, nil
}

// ScrapeTextLayer pulls printable text runs out of raw document bytes. PDF
// text layers embed enough plain strings for keyword-scale extraction; for
// image-only documents the result falls under minTextLength and the
// candidate stays empty.
func ScrapeTextLayer(content []byte) string {
	var builder []byte
	var run []byte

	flush := func() {
		if len(run) >= 4 {
			builder = append(builder, run...)
			builder = append(builder, '\n')
		}
		run = run[:0]
	}

	for _, b := range content {
		if (b >= 0x20 && b < 0x7f) || b == '\t' {
			run = append(run, b)
		} else {
			flush()
		}
	}
	flush()

	return string(builder)
}
