package deck

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"flashdeck/internal/storage"
)

func TestFromRowsNormalizesHeaders(t *testing.T) {
	rows := []storage.Row{
		{" Question ": "What is WACC?", "ANSWER": "Weighted avg cost of capital", "Category": "Valuation", "difficulty ": "Easy"},
		{"question": "Define EBITDA", "answer": "Earnings before interest, taxes, depreciation, amortization", "category": "Accounting", "difficulty": "Easy"},
	}
	d := FromRows(rows)

	want := []storage.Record{
		{Question: "What is WACC?", Answer: "Weighted avg cost of capital", Category: "Valuation", Difficulty: "Easy"},
		{Question: "Define EBITDA", Answer: "Earnings before interest, taxes, depreciation, amortization", Category: "Accounting", Difficulty: "Easy"},
	}
	if diff := cmp.Diff(want, d.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Accounting", "Valuation"}, d.Categories)
	assert.Equal(t, []string{"Easy"}, d.Difficulties)
	assert.Equal(t, 2, d.Len())
}

func TestFromRowsHeaderCollisionPrefersValue(t *testing.T) {
	d := FromRows([]storage.Row{{"Category": "", "category": "Tax", "question": "q"}})
	assert.Equal(t, "Tax", d.Records[0].Category)
}

func TestFromRowsBlankTagsStayOutOfVocabulary(t *testing.T) {
	d := FromRows([]storage.Row{
		{"question": "q1", "answer": "a1", "category": "  ", "difficulty": "Hard"},
		{"question": "q2", "answer": "a2"},
		{"question": "q3", "answer": "a3", "category": "Tax", "difficulty": "Hard"},
	})
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, []string{"Tax"}, d.Categories)
	assert.Equal(t, []string{"Hard"}, d.Difficulties)
}

func TestFromRowsEmpty(t *testing.T) {
	d := FromRows(nil)
	assert.Zero(t, d.Len())
	assert.Empty(t, d.Categories)
	assert.Empty(t, d.Difficulties)
}
