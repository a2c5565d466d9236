package fiscal

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Modelo do documento fiscal: 65 = NFC-e (nota fiscal de consumidor eletrônica).
const ModeloNFCe = "65"

// Ambientes de emissão aceitos pela SEFAZ.
const (
	AmbienteProducao    = "producao"
	AmbienteHomologacao = "homologacao"
)

// codigoUF mapeia a sigla da UF para o código IBGE de dois dígitos usado
// na composição da chave de acesso.
var codigoUF = map[string]string{
	"RO": "11", "AC": "12", "AM": "13", "RR": "14", "PA": "15",
	"AP": "16", "TO": "17", "MA": "21", "PI": "22", "CE": "23",
	"RN": "24", "PB": "25", "PE": "26", "AL": "27", "SE": "28",
	"BA": "29", "MG": "31", "ES": "32", "RJ": "33", "SP": "35",
	"PR": "41", "SC": "42", "RS": "43", "MS": "50", "MT": "51",
	"GO": "52", "DF": "53",
}

// codigoPagamento segue a tabela tPag do layout da NF-e.
var codigoPagamento = map[string]string{
	"dinheiro": "01",
	"credito":  "03",
	"debito":   "04",
	"pix":      "17",
}

// CodigoPagamento converte o método de pagamento interno para o código
// tPag. Métodos desconhecidos viram "99" (outros).
func CodigoPagamento(metodo string) string {
	if c, ok := codigoPagamento[metodo]; ok {
		return c
	}
	return "99"
}

// Emitente agrupa os dados cadastrais da loja usados no bloco emit.
type Emitente struct {
	CNPJ         string `json:"cnpj"`
	RazaoSocial  string `json:"razao_social"`
	NomeFantasia string `json:"nome_fantasia,omitempty"`
	IE           string `json:"ie,omitempty"`
	Endereco     string `json:"endereco,omitempty"`
	Municipio    string `json:"municipio,omitempty"`
	UF           string `json:"uf"`
}

// ChaveAcesso monta a chave de 44 dígitos:
// cUF(2) + AAMM(4) + CNPJ(14) + modelo(2) + série(3) + número(9) +
// tpEmis(1) + cNF(8) + DV(1).
// UF desconhecida cai no código de SP; o CNPJ é reduzido a dígitos e
// completado com zeros à esquerda.
func ChaveAcesso(uf, cnpj string, serie int, numero int64, emissao time.Time, codigoNumerico int) string {
	cuf, ok := codigoUF[strings.ToUpper(strings.TrimSpace(uf))]
	if !ok {
		cuf = codigoUF["SP"]
	}

	var b strings.Builder
	b.WriteString(cuf)
	b.WriteString(emissao.Format("0601")) // AAMM
	b.WriteString(fmt.Sprintf("%014s", somenteDigitos(cnpj)))
	b.WriteString(ModeloNFCe)
	b.WriteString(fmt.Sprintf("%03d", serie))
	b.WriteString(fmt.Sprintf("%09d", numero))
	b.WriteString("1") // tpEmis: emissão normal
	b.WriteString(fmt.Sprintf("%08d", codigoNumerico))

	base := b.String()
	return base + fmt.Sprintf("%d", Modulo11(base))
}

// CodigoNumerico sorteia o cNF de 8 dígitos embutido na chave.
func CodigoNumerico() int {
	return rand.Intn(100_000_000)
}

func somenteDigitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ── Documento ────────────────────────────────────────────────────────────────

// Nota é o documento fiscal estruturado gravado junto à venda e enviado
// à SEFAZ. O formato é fixo; campos de imposto são placeholders do
// regime Simples Nacional.
type Nota struct {
	Identificacao Identificacao `json:"ide"`
	Emitente      Emitente      `json:"emit"`
	Itens         []Item        `json:"det"`
	Totais        Totais        `json:"total"`
	Pagamento     Pagamento     `json:"pag"`
	Assinatura    *Assinatura   `json:"assinatura,omitempty"`
}

type Identificacao struct {
	ChaveAcesso string    `json:"chave_acesso"`
	Modelo      string    `json:"modelo"`
	Serie       int       `json:"serie"`
	Numero      int64     `json:"numero"`
	Emissao     time.Time `json:"emissao"`
	TipoEmissao int       `json:"tp_emis"`
	Ambiente    string    `json:"ambiente"`
	NaturezaOp  string    `json:"nat_op"`
}

type Item struct {
	NumeroItem    int             `json:"n_item"`
	Codigo        string          `json:"codigo"`
	Descricao     string          `json:"descricao"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	ValorUnitario decimal.Decimal `json:"valor_unitario"`
	ValorTotal    decimal.Decimal `json:"valor_total"`
	CFOP          string          `json:"cfop"`
	CSOSN         string          `json:"csosn"`
	CSTPIS        string          `json:"cst_pis"`
	CSTCOFINS     string          `json:"cst_cofins"`
}

type Totais struct {
	ValorProdutos decimal.Decimal `json:"v_prod"`
	Desconto      decimal.Decimal `json:"v_desc"`
	ValorNota     decimal.Decimal `json:"v_nf"`
}

type Pagamento struct {
	Forma string          `json:"t_pag"`
	Valor decimal.Decimal `json:"v_pag"`
}

// Assinatura é apenas um placeholder: a assinatura digital real exige
// certificado A1/A3 e está fora do escopo do motor.
type Assinatura struct {
	Algoritmo      string `json:"algoritmo"`
	DigestValue    string `json:"digest_value"`
	SignatureValue string `json:"signature_value"`
}

// ItemNota é a visão que o montador precisa de cada linha do carrinho.
type ItemNota struct {
	Codigo        string
	Descricao     string
	Quantidade    decimal.Decimal
	ValorUnitario decimal.Decimal
	ValorTotal    decimal.Decimal
}

// MontarNota constrói a NFC-e a partir da venda já calculada. temCertificado
// indica se há material de assinatura configurado: quando true um bloco de
// assinatura placeholder é anexado; quando false a nota sai sem assinatura
// e cabe ao chamador registrar o aviso.
func MontarNota(emit Emitente, itens []ItemNota, serie int, numero int64, ambiente string,
	subtotal, desconto, total decimal.Decimal, metodoPagamento, chaveAcesso string,
	emissao time.Time, temCertificado bool) *Nota {

	nota := &Nota{
		Identificacao: Identificacao{
			ChaveAcesso: chaveAcesso,
			Modelo:      ModeloNFCe,
			Serie:       serie,
			Numero:      numero,
			Emissao:     emissao,
			TipoEmissao: 1,
			Ambiente:    ambiente,
			NaturezaOp:  "VENDA AO CONSUMIDOR",
		},
		Emitente: emit,
		Totais: Totais{
			ValorProdutos: subtotal,
			Desconto:      desconto,
			ValorNota:     total,
		},
		Pagamento: Pagamento{
			Forma: CodigoPagamento(metodoPagamento),
			Valor: total,
		},
	}

	for i, it := range itens {
		nota.Itens = append(nota.Itens, Item{
			NumeroItem:    i + 1,
			Codigo:        it.Codigo,
			Descricao:     it.Descricao,
			Quantidade:    it.Quantidade,
			ValorUnitario: it.ValorUnitario,
			ValorTotal:    it.ValorTotal,
			CFOP:          "5102",
			CSOSN:         "102",
			CSTPIS:        "49",
			CSTCOFINS:     "49",
		})
	}

	if temCertificado {
		nota.Assinatura = &Assinatura{Algoritmo: "RSA-SHA1"}
	}

	return nota
}
