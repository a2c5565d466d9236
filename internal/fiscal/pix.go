package fiscal

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tags EMV do payload PIX "copia e cola" (BR Code estático).
const (
	tagFormatIndicator = "00"
	tagMerchantAccount = "26"
	tagCategoryCode    = "52"
	tagCurrency        = "53"
	tagAmount          = "54"
	tagCountry         = "58"
	tagMerchantName    = "59"
	tagMerchantCity    = "60"
	tagAdditionalData  = "62"
	tagCRC             = "63"
	guiPix             = "br.gov.bcb.pix"
	moedaBRL           = "986"
	txidPadrao         = "***"
	maxNomeRecebedor   = 25
	maxCidadeRecebedor = 15
)

// PixPayload monta o código TLV completo, terminado em "6304" + CRC16 em
// hexadecimal maiúsculo. O payload independe de conectividade: qualquer
// leitor compatível com o BR Code consegue consumi-lo.
func PixPayload(nomeRecebedor, cidade, chave string, valor decimal.Decimal, txid string) string {
	if txid == "" {
		txid = txidPadrao
	}

	conta := emv("00", guiPix) + emv("01", chave)
	adicional := emv("05", txid)

	var b strings.Builder
	b.WriteString(emv(tagFormatIndicator, "01"))
	b.WriteString(emv(tagMerchantAccount, conta))
	b.WriteString(emv(tagCategoryCode, "0000"))
	b.WriteString(emv(tagCurrency, moedaBRL))
	b.WriteString(emv(tagAmount, valor.StringFixed(2)))
	b.WriteString(emv(tagCountry, "BR"))
	b.WriteString(emv(tagMerchantName, normalizarCampo(nomeRecebedor, maxNomeRecebedor)))
	b.WriteString(emv(tagMerchantCity, normalizarCampo(cidade, maxCidadeRecebedor)))
	b.WriteString(emv(tagAdditionalData, adicional))

	// O CRC cobre o corpo mais a própria tag+tamanho "6304".
	payload := b.String() + tagCRC + "04"
	return payload + fmt.Sprintf("%04X", CRC16CCITT(payload))
}

// emv codifica um campo tag-length-value com tamanho de dois dígitos.
func emv(id, valor string) string {
	return id + fmt.Sprintf("%02d", len(valor)) + valor
}

// normalizarCampo prepara nome/cidade para o conjunto de caracteres do
// BR Code: remove acentuação (decomposição NFD + descarte de marcas),
// troca qualquer caractere fora de [A-Za-z0-9 ] por espaço, apara,
// converte para maiúsculas e trunca no limite do campo.
func normalizarCampo(s string, limite int) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	semAcento, _, err := transform.String(t, s)
	if err != nil {
		semAcento = s
	}

	var b strings.Builder
	for _, r := range semAcento {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	limpo := strings.ToUpper(strings.TrimSpace(b.String()))
	if len(limpo) > limite {
		limpo = limpo[:limite]
	}
	return limpo
}
