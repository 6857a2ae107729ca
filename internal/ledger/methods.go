package ledger

import (
	"sort"
	"strings"
)

// Method is a payment channel a deposit can be made through. Methods with
// an empty Address are settled by manual review.
type Method struct {
	Code    string `json:"code"`
	Address string `json:"address,omitempty"`
}

// Methods is the registry of recognised payment methods.
type Methods struct {
	byCode map[string]Method
}

// DefaultMethods returns the built-in registry.
func DefaultMethods() *Methods {
	return NewMethods(
		Method{Code: "BTC", Address: "35DrUNecGXnuhQvizUTxYD42WN9PqcHUHz"},
		Method{Code: "ETH", Address: "0x86a2fda85b8978cd747c28ba7f5bdb5e855c7db0"},
		Method{Code: "USDT", Address: "TZ3jxLmbSEDKHLcEgw5uwM9kqUiSHj9njD"},
		Method{Code: "BANK_TRANSFER"},
		Method{Code: "CARD"},
	)
}

func NewMethods(methods ...Method) *Methods {
	m := &Methods{byCode: make(map[string]Method, len(methods))}
	for _, method := range methods {
		method.Code = normalizeMethod(method.Code)
		m.byCode[method.Code] = method
	}
	return m
}

// WithAddresses returns a copy of m with the given addresses (keyed by
// method code) replacing the built-in ones. Unknown codes are added.
func (m *Methods) WithAddresses(addresses map[string]string) *Methods {
	out := &Methods{byCode: make(map[string]Method, len(m.byCode)+len(addresses))}
	for code, method := range m.byCode {
		out.byCode[code] = method
	}
	for code, addr := range addresses {
		code = normalizeMethod(code)
		out.byCode[code] = Method{Code: code, Address: addr}
	}
	return out
}

// Lookup finds a method by code, ignoring case and surrounding spaces.
func (m *Methods) Lookup(code string) (Method, bool) {
	method, ok := m.byCode[normalizeMethod(code)]
	return method, ok
}

// All returns the registered methods ordered by code.
func (m *Methods) All() []Method {
	out := make([]Method, 0, len(m.byCode))
	for _, method := range m.byCode {
		out = append(out, method)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func normalizeMethod(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
