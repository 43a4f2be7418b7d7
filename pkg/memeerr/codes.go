package memeerr

// ErrorCode is the numeric code carried in `{code, message, data}` error bodies.
type ErrorCode int

const (
	CodeImageDecodeError    ErrorCode = 510
	CodeImageEncodeError    ErrorCode = 520
	CodeImageAssetMissing   ErrorCode = 530
	CodeDeserializeError    ErrorCode = 540
	CodeImageNumberMismatch ErrorCode = 550
	CodeTextNumberMismatch  ErrorCode = 551
	CodeTextOverLength      ErrorCode = 560
	CodeMemeFeedback        ErrorCode = 570
)

type codeInfo struct {
	label string
	kind  Kind
}

var codeTable = map[ErrorCode]codeInfo{
	CodeImageDecodeError:    {label: "IMAGE_DECODE_ERROR", kind: KindImageDecodeError},
	CodeImageEncodeError:    {label: "IMAGE_ENCODE_ERROR", kind: KindImageEncodeError},
	CodeImageAssetMissing:   {label: "IMAGE_ASSET_MISSING", kind: KindImageAssetMissing},
	CodeDeserializeError:    {label: "DESERIALIZE_ERROR", kind: KindDeserializeError},
	CodeImageNumberMismatch: {label: "IMAGE_NUMBER_MISMATCH", kind: KindImageNumberMismatch},
	CodeTextNumberMismatch:  {label: "TEXT_NUMBER_MISMATCH", kind: KindTextNumberMismatch},
	CodeTextOverLength:      {label: "TEXT_OVER_LENGTH", kind: KindTextOverLength},
	CodeMemeFeedback:        {label: "MEME_FEEDBACK", kind: KindMemeFeedback},
}

// Label returns the human-readable label of c, "UNKNOWN" when c is not a known code.
func (c ErrorCode) Label() string {
	if info, ok := codeTable[c]; ok {
		return info.label
	}
	return "UNKNOWN"
}

// Kind returns the kind c resolves to.
func (c ErrorCode) Kind() (Kind, bool) {
	info, ok := codeTable[c]
	return info.kind, ok
}

// Known reports whether c is part of the code table.
func (c ErrorCode) Known() bool {
	_, ok := codeTable[c]
	return ok
}

// Codes lists every known code in ascending order.
func Codes() []ErrorCode {
	return []ErrorCode{
		CodeImageDecodeError,
		CodeImageEncodeError,
		CodeImageAssetMissing,
		CodeDeserializeError,
		CodeImageNumberMismatch,
		CodeTextNumberMismatch,
		CodeTextOverLength,
		CodeMemeFeedback,
	}
}
