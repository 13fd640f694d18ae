package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTitles(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Candidate
	}{
		{
			"guillemets",
			"«Матрица» (1999), «Начало» (2010)",
			[]Candidate{{"Матрица", 1999}, {"Начало", 2010}},
		},
		{
			"straight quotes",
			`Советую, "Inception" (2010)`,
			[]Candidate{{"Inception", 2010}},
		},
		{
			"bare title",
			"Интерстеллар (2014)",
			[]Candidate{{"Интерстеллар", 2014}},
		},
		{
			"mixed formats with duplicates",
			`«Матрица» (1999), "Матрица" (1999), Дюна (2021)`,
			[]Candidate{{"Матрица", 1999}, {"Дюна", 2021}},
		},
		{
			"no titles",
			"Не могу ничего посоветовать.",
			nil,
		},
		{
			"numbered title survives",
			"Рекомендую, «Бегущий по лезвию 2049» (2017).",
			[]Candidate{{"Бегущий по лезвию 2049", 2017}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitles(tt.text))
		})
	}
}

func TestExtractTitles_OrderPreserved(t *testing.T) {
	got := ExtractTitles("«Первый» (2001), «Второй» (2002), «Третий» (2003)")
	assert.Equal(t, []Candidate{{"Первый", 2001}, {"Второй", 2002}, {"Третий", 2003}}, got)
}

func TestExtractTitles_Idempotent(t *testing.T) {
	text := "«Матрица» (1999), «Начало» (2010)"
	first := ExtractTitles(text)
	second := ExtractTitles(text)
	assert.Equal(t, first, second)
}
