package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatPrice(t *testing.T) {
	require.Equal(t, "0", formatPrice(0))
	require.Equal(t, "999", formatPrice(999))
	require.Equal(t, "25,990,000", formatPrice(25990000))
	require.Equal(t, "1,000", formatPrice(999.5))
	require.Equal(t, "2", formatPrice(2.5))
}

func TestWithClosing(t *testing.T) {
	require.Equal(t, "A\n\n"+closingCategoryPrompt, withClosing(" A \n", closingCategoryPrompt))
	require.Equal(t, "A "+closingCategoryPrompt, withClosing("A "+closingCategoryPrompt+"\n", closingCategoryPrompt))
}
