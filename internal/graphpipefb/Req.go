package graphpipefb

import "strconv"

type Req byte

const (
	ReqNONE            Req = 0
	ReqInferRequest    Req = 1
	ReqMetadataRequest Req = 2
)

var EnumNamesReq = map[Req]string{
	ReqNONE:            "NONE",
	ReqInferRequest:    "InferRequest",
	ReqMetadataRequest: "MetadataRequest",
}

var EnumValuesReq = map[string]Req{
	"NONE":            ReqNONE,
	"InferRequest":    ReqInferRequest,
	"MetadataRequest": ReqMetadataRequest,
}

func (v Req) String() string {
	if s, ok := EnumNamesReq[v]; ok {
		return s
	}
	return "Req(" + strconv.FormatInt(int64(v), 10) + ")"
}
