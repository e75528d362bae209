package store

import "github.com/kvforge/respkv/internal/proto"

// ToProto applies the total mapping from ReturnValue to RESP value.
func ToProto(rv ReturnValue) proto.Value {
	switch rv.kind {
	case rvOk:
		return proto.SimpleString("OK")
	case rvNil:
		return proto.NullBulkString()
	case rvString:
		return proto.Bulk(rv.str)
	case rvMultiString:
		elems := make([]proto.Value, len(rv.strs))
		for i, s := range rv.strs {
			elems[i] = proto.Bulk(s)
		}
		return proto.Arr(elems)
	case rvInt:
		return proto.Int(rv.intVal)
	case rvError:
		return proto.Err(string(rv.errorMsg))
	case rvArray:
		elems := make([]proto.Value, len(rv.arr))
		for i, v := range rv.arr {
			elems[i] = ToProto(v)
		}
		return proto.Arr(elems)
	default:
		return proto.NullBulkString()
	}
}
