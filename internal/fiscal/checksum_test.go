package fiscal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModulo11(t *testing.T) {
	// Valores calculados à mão pelo algoritmo de pesos 2..9
	cases := []struct {
		digits string
		dv     int
	}{
		{"0", 0},   // soma 0, resto 0 → 0
		{"1", 9},   // 1×2 = 2, resto 2 → 9
		{"25", 6},  // 5×2 + 2×3 = 16, resto 5 → 6
		{"110", 4}, // 0×2 + 1×3 + 1×4 = 7, resto 7 → 4
	}
	for _, c := range cases {
		assert.Equal(t, c.dv, Modulo11(c.digits), "Modulo11(%q)", c.digits)
	}
}

func TestModulo11RestoMenorQueDois(t *testing.T) {
	// resto 1 também resulta em DV 0
	// "29": 9×2 + 2×3 = 24, resto 2 → 9; precisamos de resto 1:
	// "6": 6×2 = 12, resto 1 → 0
	assert.Equal(t, 0, Modulo11("6"))
}

func TestCRC16CCITT(t *testing.T) {
	// Vetor de teste clássico do CRC16/CCITT-FALSE
	assert.Equal(t, uint16(0x29B1), CRC16CCITT("123456789"))
}

func TestCRC16CCITTVazio(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), CRC16CCITT(""))
}
