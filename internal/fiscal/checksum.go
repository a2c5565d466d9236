// Package fiscal contém os algoritmos puros do motor fiscal: dígito
// verificador módulo-11 da chave de acesso, CRC16/CCITT do payload PIX,
// montagem da NFC-e e do código "copia e cola".
// Nenhuma função deste pacote toca banco, rede ou relógio global.
package fiscal

// Modulo11 calcula o dígito verificador de uma sequência numérica
// percorrendo os dígitos da direita para a esquerda com pesos cíclicos
// 2..9. Resto < 2 resulta em DV 0; caso contrário DV = 11 − resto.
// Caracteres fora de '0'..'9' tornam o resultado indefinido — o chamador
// garante a entrada.
func Modulo11(digits string) int {
	sum := 0
	weight := 2
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// CRC16CCITT calcula o checksum CRC16/CCITT-FALSE (polinômio 0x1021,
// valor inicial 0xFFFF) sobre os bytes da string.
func CRC16CCITT(payload string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(payload); i++ {
		crc ^= uint16(payload[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
