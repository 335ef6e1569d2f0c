package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/despensaapp/nfce-api/internal/config"
	"github.com/despensaapp/nfce-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// soapEnvelopeTemplate is the NFeConsultaProtocolo4 request body; the access
// key is the only variable part.
const soapEnvelopeTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<soap12:Envelope xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
  <soap12:Body>
    <nfeConsultaNF xmlns="http://www.portalfiscal.inf.br/nfe/wsdl/NFeConsultaProtocolo4">
      <nfeDadosMsg>
        <consSitNFe xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
          <tpAmb>1</tpAmb>
          <xServ>CONSULTAR</xServ>
          <chNFe>%s</chNFe>
        </consSitNFe>
      </nfeDadosMsg>
    </nfeConsultaNF>
  </soap12:Body>
</soap12:Envelope>`

const soapAction = "http://www.portalfiscal.inf.br/nfe/wsdl/NFeConsultaProtocolo4/nfeConsultaNF"

var nfeProcPattern = regexp.MustCompile(`(?is)<nfeProc[^>]*>.*</nfeProc>`)

// ProtocolQueryStrategy queries the state tax authority's structured
// consultation service for the canonical document. The most authoritative
// source and the first one tried.
type ProtocolQueryStrategy struct {
	endpoints []string
	timeout   time.Duration
	client    *http.Client
	logger    *logrus.Logger
}

// NewProtocolQueryStrategy creates a new protocol query strategy
func NewProtocolQueryStrategy(cfg config.NFCeConfig, logger *logrus.Logger) *ProtocolQueryStrategy {
	return &ProtocolQueryStrategy{
		endpoints: cfg.ProtocolEndpoints,
		timeout:   cfg.ProtocolTimeout,
		client:    &http.Client{},
		logger:    logger,
	}
}

// Name identifies the strategy in logs and metrics
func (s *ProtocolQueryStrategy) Name() string {
	return "protocol-query"
}

// Attempt posts the consultation envelope to each configured endpoint in
// sequence and extracts products from the first response carrying a document
// fragment. Unreachable or malformed endpoints are skipped, not fatal.
func (s *ProtocolQueryStrategy) Attempt(ctx context.Context, input StrategyInput) StrategyResult {
	if input.Params == nil || !utils.IsAccessKey(input.Params.AccessKey) {
		return Empty()
	}

	envelope := fmt.Sprintf(soapEnvelopeTemplate, input.Params.AccessKey)

	for _, endpoint := range s.endpoints {
		body, err := s.post(ctx, endpoint, envelope)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"strategy": s.Name(),
				"endpoint": endpoint,
				"error":    err.Error(),
			}).Debug("Protocol endpoint unreachable, trying next")
			continue
		}

		if !strings.Contains(body, "<?xml") && !strings.Contains(body, "<nfeProc") {
			continue
		}

		fragment := body
		if match := nfeProcPattern.FindString(body); match != "" {
			fragment = match
		}

		if products := ParseDocumentXML(fragment); len(products) > 0 {
			return Success(products)
		}
	}

	return Empty()
}

func (s *ProtocolQueryStrategy) post(ctx context.Context, endpoint, envelope string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, strings.NewReader(envelope))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapAction)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

var _ ExtractionStrategy = (*ProtocolQueryStrategy)(nil)
