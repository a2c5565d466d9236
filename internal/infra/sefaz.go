package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jrrjunior25/PDV-master-sub000/internal/fiscal"
)

// CStatAutorizada é o código de status da SEFAZ que significa
// "Autorizado o uso da NF-e".
const CStatAutorizada = 100

// EnvioNFCe é o envelope postado no endpoint de autorização.
type EnvioNFCe struct {
	ChaveAcesso string       `json:"chave_acesso"`
	Ambiente    string       `json:"ambiente"`
	Nota        *fiscal.Nota `json:"nota"`
}

// RetornoSefaz é a resposta da autorização. Protocolo só vem preenchido
// quando CStat == CStatAutorizada.
type RetornoSefaz struct {
	CStat     int    `json:"c_stat"`
	XMotivo   string `json:"x_motivo"`
	Protocolo string `json:"n_prot"`
}

// Autorizada informa se a SEFAZ aceitou o documento.
func (r *RetornoSefaz) Autorizada() bool { return r != nil && r.CStat == CStatAutorizada }

// SefazClient envia NFC-e ao webservice de autorização. O ambiente da
// configuração seleciona entre homologação e produção. É feita UMA
// tentativa por chamada; retry fica a cargo do cron de retransmissão.
type SefazClient struct {
	urlHomologacao string
	urlProducao    string
	httpClient     *http.Client
}

func NewSefazClient(urlHomologacao, urlProducao string) *SefazClient {
	return &SefazClient{
		urlHomologacao: urlHomologacao,
		urlProducao:    urlProducao,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Enviar posta o envelope e devolve o retorno da SEFAZ. Qualquer falha de
// transporte/timeout vira erro — cabe ao chamador rebaixá-la a resultado
// não-fatal (a venda nunca bloqueia nesse ponto).
func (c *SefazClient) Enviar(ctx context.Context, envio EnvioNFCe) (*RetornoSefaz, error) {
	url := c.urlHomologacao
	if envio.Ambiente == fiscal.AmbienteProducao {
		url = c.urlProducao
	}

	body, err := json.Marshal(envio)
	if err != nil {
		return nil, fmt.Errorf("sefaz: marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/nfce/autorizacao", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sefaz: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sefaz: endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sefaz: endpoint returned %d", resp.StatusCode)
	}

	var retorno RetornoSefaz
	if err := json.NewDecoder(resp.Body).Decode(&retorno); err != nil {
		return nil, fmt.Errorf("sefaz: decode response: %w", err)
	}
	return &retorno, nil
}
