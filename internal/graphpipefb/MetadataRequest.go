package graphpipefb

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

type MetadataRequest struct {
	_tab flatbuffers.Table
}

func (rcv *MetadataRequest) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *MetadataRequest) Table() flatbuffers.Table {
	return rcv._tab
}

func MetadataRequestStart(builder *flatbuffers.Builder) {
	builder.StartObject(0)
}

func MetadataRequestEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}
