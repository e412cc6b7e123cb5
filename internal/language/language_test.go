package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode string
	}{
		{"english", "I would like a refund for my order", "en"},
		{"empty", "", "en"},
		{"hebrew", "אני רוצה החזר כספי על ההזמנה שלי", "he"},
		{"russian", "Я хочу вернуть деньги за заказ", "ru"},
		{"chinese", "我想退款我的订单", "zh"},
		{"japanese with kana", "注文の返金をお願いします", "ja"},
		{"korean", "주문 환불을 원합니다", "ko"},
		{"mostly english with some hebrew", "Please refund my order תודה", "he"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, Detect(tt.text).Code)
		})
	}
}

func TestReplyInstruction(t *testing.T) {
	assert.Empty(t, ReplyInstruction("Where is my order?"))
	assert.Equal(t, "Please respond in Hebrew (עברית).", ReplyInstruction("איפה ההזמנה שלי"))
}
