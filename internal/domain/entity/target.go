package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// ChatTarget xabar manzili: raqamli chat ID yoki @kanal nomi
type ChatTarget struct {
	ID       int64
	Username string
}

// ChatByID raqamli manzil
func ChatByID(id int64) ChatTarget {
	return ChatTarget{ID: id}
}

// ParseTarget "123456", "-100123" yoki "@channel" ko'rinishidagi qiymatni o'qish
func ParseTarget(raw string) (ChatTarget, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ChatTarget{}, fmt.Errorf("chat manzili bo'sh")
	}

	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if id == 0 {
			return ChatTarget{}, fmt.Errorf("chat ID 0 bo'lishi mumkin emas")
		}
		return ChatTarget{ID: id}, nil
	}

	name := strings.TrimPrefix(raw, "@")
	if name == "" || strings.ContainsAny(name, " \t\n@/") {
		return ChatTarget{}, fmt.Errorf("noto'g'ri chat manzili: %q", raw)
	}
	return ChatTarget{Username: "@" + name}, nil
}

// IsChannel manzil username orqali berilganmi
func (t ChatTarget) IsChannel() bool {
	return t.Username != ""
}

func (t ChatTarget) String() string {
	if t.Username != "" {
		return t.Username
	}
	return strconv.FormatInt(t.ID, 10)
}
