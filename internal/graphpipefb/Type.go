package graphpipefb

import "strconv"

type Type byte

const (
	TypeNull    Type = 0
	TypeUint8   Type = 1
	TypeInt8    Type = 2
	TypeUint16  Type = 3
	TypeInt16   Type = 4
	TypeUint32  Type = 5
	TypeInt32   Type = 6
	TypeUint64  Type = 7
	TypeInt64   Type = 8
	TypeFloat16 Type = 9
	TypeFloat32 Type = 10
	TypeFloat64 Type = 11
	TypeString  Type = 12
)

var EnumNamesType = map[Type]string{
	TypeNull:    "Null",
	TypeUint8:   "Uint8",
	TypeInt8:    "Int8",
	TypeUint16:  "Uint16",
	TypeInt16:   "Int16",
	TypeUint32:  "Uint32",
	TypeInt32:   "Int32",
	TypeUint64:  "Uint64",
	TypeInt64:   "Int64",
	TypeFloat16: "Float16",
	TypeFloat32: "Float32",
	TypeFloat64: "Float64",
	TypeString:  "String",
}

var EnumValuesType = map[string]Type{
	"Null":    TypeNull,
	"Uint8":   TypeUint8,
	"Int8":    TypeInt8,
	"Uint16":  TypeUint16,
	"Int16":   TypeInt16,
	"Uint32":  TypeUint32,
	"Int32":   TypeInt32,
	"Uint64":  TypeUint64,
	"Int64":   TypeInt64,
	"Float16": TypeFloat16,
	"Float32": TypeFloat32,
	"Float64": TypeFloat64,
	"String":  TypeString,
}

func (v Type) String() string {
	if s, ok := EnumNamesType[v]; ok {
		return s
	}
	return "Type(" + strconv.FormatInt(int64(v), 10) + ")"
}
