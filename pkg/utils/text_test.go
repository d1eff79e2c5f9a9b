package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text collapses whitespace", in: "삼성전자   주가\n\n급등", want: "삼성전자 주가 급등"},
		{name: "html tags removed", in: "<p>기준금리 <b>동결</b></p><p>환율 상승</p>", want: "기준금리 동결환율 상승"},
		{name: "scripts dropped", in: "<div>GDP<script>var x = 1;</script></div>", want: "GDP"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestCleanToValidUTF8(t *testing.T) {
	assert.Equal(t, "ab", CleanToValidUTF8("a\xffb"))
	assert.Equal(t, "반도체", CleanToValidUTF8("반도체"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "삼성", Truncate("삼성전자", 2))
	assert.Equal(t, "삼성전자", Truncate("삼성전자", 10))
	assert.Equal(t, "", Truncate("삼성전자", 0))
}
