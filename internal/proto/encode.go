package proto

import (
	"strconv"
)

// Encode serializes v into its RESP wire representation, appending to
// dst and returning the grown slice. Recurses for arrays.
func Encode(dst []byte, v Value) []byte {
	switch v.Type {
	case TypeSimpleString:
		dst = append(dst, byte(TypeSimpleString))
		dst = append(dst, v.Str...)
		return append(dst, CRLF...)
	case TypeError:
		dst = append(dst, byte(TypeError))
		dst = append(dst, v.Str...)
		return append(dst, CRLF...)
	case TypeInteger:
		dst = append(dst, byte(TypeInteger))
		dst = strconv.AppendInt(dst, v.Int, 10)
		return append(dst, CRLF...)
	case TypeBulkString:
		if v.NullBulk {
			return append(dst, "$-1\r\n"...)
		}
		dst = append(dst, byte(TypeBulkString))
		dst = strconv.AppendInt(dst, int64(len(v.Str)), 10)
		dst = append(dst, CRLF...)
		dst = append(dst, v.Str...)
		return append(dst, CRLF...)
	case TypeArray:
		if v.NullArray {
			return append(dst, "*-1\r\n"...)
		}
		dst = append(dst, byte(TypeArray))
		dst = strconv.AppendInt(dst, int64(len(v.Array)), 10)
		dst = append(dst, CRLF...)
		for _, elem := range v.Array {
			dst = Encode(dst, elem)
		}
		return dst
	default:
		// An unset Type never reaches here from this package's own
		// constructors; treat it as an empty bulk string to stay total.
		return append(dst, "$0\r\n\r\n"...)
	}
}

// EncodeBytes is a convenience wrapper returning a fresh slice.
func EncodeBytes(v Value) []byte {
	return Encode(nil, v)
}
