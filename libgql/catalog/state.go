package catalog

import (
	proto "github.com/gogo/protobuf/proto"
)

// CatalogState is the catalog's bookkeeping record, stored under gCatalogStateKey.
// Records are encoded with proto.Marshal via their struct tags.
type CatalogState struct {
	MajorVers       int32  `protobuf:"varint,1,opt,name=MajorVers,proto3" json:"MajorVers,omitempty"`
	MinorVers       int32  `protobuf:"varint,2,opt,name=MinorVers,proto3" json:"MinorVers,omitempty"`
	NumCycles       uint64 `protobuf:"varint,3,opt,name=NumCycles,proto3" json:"NumCycles,omitempty"`
	NumGraphs       uint64 `protobuf:"varint,4,opt,name=NumGraphs,proto3" json:"NumGraphs,omitempty"`
	NumCandidates   uint64 `protobuf:"varint,5,opt,name=NumCandidates,proto3" json:"NumCandidates,omitempty"`
	NumCoefficients uint64 `protobuf:"varint,6,opt,name=NumCoefficients,proto3" json:"NumCoefficients,omitempty"`
}

func (m *CatalogState) Reset()         { *m = CatalogState{} }
func (m *CatalogState) String() string { return proto.CompactTextString(m) }
func (*CatalogState) ProtoMessage()    {}

// GraphEntry is the value stored for each catalogued graph.
type GraphEntry struct {
	Cycle    uint64 `protobuf:"varint,1,opt,name=Cycle,proto3" json:"Cycle,omitempty"`
	Index    int32  `protobuf:"varint,2,opt,name=Index,proto3" json:"Index,omitempty"`
	NumVerts int32  `protobuf:"varint,3,opt,name=NumVerts,proto3" json:"NumVerts,omitempty"`
	NumEdges int32  `protobuf:"varint,4,opt,name=NumEdges,proto3" json:"NumEdges,omitempty"`
}

func (m *GraphEntry) Reset()         { *m = GraphEntry{} }
func (m *GraphEntry) String() string { return proto.CompactTextString(m) }
func (*GraphEntry) ProtoMessage()    {}
