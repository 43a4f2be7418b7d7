package memeerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassifyStatusScenarios(t *testing.T) {
	cases := []struct {
		status int
		body   string
		kind   Kind
	}{
		{531, `{"detail":"no such meme"}`, KindNoSuchMeme},
		{532, `{"detail":"text too long"}`, KindTextOverLength},
		{545, `{"detail":"params mismatch"}`, KindParamsMismatch},
		{541, `{"detail":"images"}`, KindImageNumberMismatch},
		{542, `{"detail":"texts"}`, KindTextNumberMismatch},
		{552, `{"detail":"bad arg"}`, KindArgModelMismatch},
		{557, `{"detail":"arg"}`, KindArgMismatch},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d", tc.status), func(t *testing.T) {
			err := Classify(tc.status, []byte(tc.body))
			if err.Kind != tc.kind {
				t.Fatalf("Kind = %q, want %q", err.Kind, tc.kind)
			}
			if err.Status != tc.status {
				t.Fatalf("Status = %d, want %d", err.Status, tc.status)
			}
		})
	}
}

func TestClassifyUnmappedStatusFallsBackToRawBody(t *testing.T) {
	err := Classify(999, []byte("something exploded"))
	if err == nil {
		t.Fatalf("Classify returned nil")
	}
	if err.Kind != KindUnknown {
		t.Fatalf("Kind = %q, want unknown", err.Kind)
	}
	if err.Message != "something exploded" {
		t.Fatalf("Message = %q", err.Message)
	}
	if !strings.Contains(err.Error(), "unknown (999)") {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestClassifyExactCodesInTable(t *testing.T) {
	for _, rule := range StatusRules() {
		if rule.Match.IsRange() {
			continue
		}
		low, _ := rule.Match.Bounds()
		if got := KindForStatus(low); got != rule.Kind {
			t.Fatalf("KindForStatus(%d) = %q, want %q", low, got, rule.Kind)
		}
	}
}

func TestClassifyRangeInteriorNotShadowed(t *testing.T) {
	rules := StatusRules()
	for i, rule := range rules {
		if !rule.Match.IsRange() {
			continue
		}
		low, high := rule.Match.Bounds()
		for code := low + 1; code < high; code++ {
			shadowed := false
			for _, earlier := range rules[:i] {
				if earlier.Match.Matches(code) {
					shadowed = true
					break
				}
			}
			if shadowed {
				continue
			}
			if got := KindForStatus(code); got != rule.Kind {
				t.Fatalf("KindForStatus(%d) = %q, want %q", code, got, rule.Kind)
			}
		}
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// 541 sits inside the params-mismatch range but is listed earlier as exact.
	if got := KindForStatus(541); got != KindImageNumberMismatch {
		t.Fatalf("KindForStatus(541) = %q", got)
	}
	if got := KindForStatus(540); got != KindParamsMismatch {
		t.Fatalf("KindForStatus(540) = %q", got)
	}
}

func TestClassifyValidationDetails(t *testing.T) {
	body := `{"detail":[{"type":"missing","loc":["body","x"],"msg":"field required","input":null}]}`
	err := Classify(422, []byte(body))
	if err.Message != "body.x [type=missing, input=null]: field required" {
		t.Fatalf("Message = %q", err.Message)
	}
	if len(err.Details) != 1 || err.Details[0].Type != "missing" {
		t.Fatalf("Details = %#v", err.Details)
	}
}

func TestClassifyValidationDetailsMultiLine(t *testing.T) {
	body := `{"detail":[
		{"type":"list_type","loc":["body","meme_list"],"msg":"Input should be a valid list","input":"1145"},
		{"type":"int_parsing","loc":["body","data",0,1],"msg":"Input should be a valid integer","input":{"a": 1}}
	]}`
	err := Classify(422, []byte(body))
	want := "body.meme_list [type=list_type, input=\"1145\"]: Input should be a valid list\n" +
		"body.data.0.1 [type=int_parsing, input={\"a\":1}]: Input should be a valid integer"
	if err.Message != want {
		t.Fatalf("Message =\n%s\nwant\n%s", err.Message, want)
	}
}

func TestClassifyPlainDetailVerbatim(t *testing.T) {
	err := Classify(531, []byte(`{"detail":"no such meme"}`))
	if err.Message != "no such meme" {
		t.Fatalf("Message = %q", err.Message)
	}
	if !errors.Is(err, ErrNoSuchMeme) {
		t.Fatalf("expected errors.Is to match ErrNoSuchMeme")
	}
}

func TestClassifyCodeRecord(t *testing.T) {
	for _, code := range Codes() {
		body := fmt.Sprintf(`{"code":%d,"message":"boom","data":{"k":1}}`, code)
		err := Classify(500, []byte(body))
		want, _ := code.Kind()
		if err.Kind != want {
			t.Fatalf("code %d: Kind = %q, want %q", code, err.Kind, want)
		}
		if err.Code != code {
			t.Fatalf("code %d: Code = %d", code, err.Code)
		}
		if err.Message != fmt.Sprintf("(%d) [%s] boom", code, code.Label()) {
			t.Fatalf("code %d: Message = %q", code, err.Message)
		}
		if string(err.Data) != `{"k":1}` {
			t.Fatalf("code %d: Data = %s", code, err.Data)
		}
	}
}

func TestClassifyUnknownCodeUsesStatusTable(t *testing.T) {
	err := Classify(531, []byte(`{"code":999,"message":"odd"}`))
	if err.Kind != KindNoSuchMeme {
		t.Fatalf("Kind = %q", err.Kind)
	}
	if err.Message != "(999) [UNKNOWN] odd" {
		t.Fatalf("Message = %q", err.Message)
	}
}

func TestClassifyMalformedBodies(t *testing.T) {
	bodies := []string{
		`{`,
		`null`,
		`[1,2,3]`,
		`{"detail": 42}`,
		`{"code": "abc"}`,
		`{"other": true}`,
		`{"detail":null}`,
		`{"detail": null }`,
		`{"detail":[]}`,
		`{"detail":[null]}`,
		`{"detail":["x"]}`,
		`{"detail":[{"type":"missing","loc":["body"],"msg":"m"}, 3]}`,
		`{"code":null,"message":"x"}`,
		"no such meme\n",
	}
	for _, body := range bodies {
		err := Classify(999, []byte(body))
		if err == nil {
			t.Fatalf("Classify(%q) returned nil", body)
		}
		if err.Kind != KindUnknown {
			t.Fatalf("Classify(%q) Kind = %q", body, err.Kind)
		}
		if err.Code != 0 || err.Details != nil {
			t.Fatalf("Classify(%q) produced structured fields: %#v", body, err)
		}
		if err.Message != body {
			t.Fatalf("Classify(%q) Message = %q", body, err.Message)
		}
		if string(err.Body) != body {
			t.Fatalf("Classify(%q) Body = %q", body, err.Body)
		}
	}
}

func TestClassifyBlankBodyUsesStatusText(t *testing.T) {
	for _, body := range []string{"", "  \n"} {
		err := Classify(502, []byte(body))
		if err.Message != "Bad Gateway" {
			t.Fatalf("Classify(%q) Message = %q", body, err.Message)
		}
		if got := err.Error(); got != "unknown (502): Bad Gateway" {
			t.Fatalf("Error() = %q", got)
		}
	}
	if err := Classify(999, nil); err.Message != "http status 999" {
		t.Fatalf("Message = %q", err.Message)
	}
}

func TestKindHelpers(t *testing.T) {
	err := fmt.Errorf("render: %w", Classify(532, []byte(`{"detail":"too long"}`)))
	if KindOf(err) != KindTextOverLength {
		t.Fatalf("KindOf = %q", KindOf(err))
	}
	if !IsKind(err, KindTextOverLength) {
		t.Fatalf("IsKind false")
	}
	if errors.Is(err, ErrNoSuchMeme) {
		t.Fatalf("unexpected match against ErrNoSuchMeme")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatalf("expected unknown kind for plain errors")
	}
}

func TestMatcher(t *testing.T) {
	if !Exact(5).Matches(5) || Exact(5).Matches(6) {
		t.Fatalf("Exact mismatch")
	}
	r := Range(9, 3)
	if low, high := r.Bounds(); low != 3 || high != 9 {
		t.Fatalf("Range bounds = %d, %d", low, high)
	}
	if !r.Matches(3) || !r.Matches(9) || r.Matches(10) {
		t.Fatalf("Range should be inclusive")
	}
	if r.String() != "Range(3, 9)" || Exact(1).String() != "Exact(1)" {
		t.Fatalf("String() = %q / %q", r.String(), Exact(1).String())
	}
}
