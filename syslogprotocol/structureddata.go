package syslogprotocol

import (
	"github.com/vmihailenco/msgpack/v4"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// SDParams maps parameter names to values within one structured-data element
type SDParams map[string]string

// StructuredData is the STRUCTURED-DATA component of a syslog message:
// a map from SD-ID to parameter name/value pairs.
//
// The wire grammar does not forbid repeated keys but this container does, for
// convenience: inserting an existing (SD-ID, param) pair overwrites the old value,
// so a message like [foo bar="baz" bar="bing"] keeps only the "bing" mapping.
type StructuredData map[string]SDParams

// NewStructuredData makes an empty container
func NewStructuredData() StructuredData {
	return make(StructuredData)
}

// Entry fetches or inserts the parameter map for the given SD-ID
func (sd StructuredData) Entry(sdID string) SDParams {
	if params, ok := sd[sdID]; ok {
		return params
	}
	params := make(SDParams)
	sd[sdID] = params
	return params
}

// InsertTuple inserts a new (SD-ID, param) -> value mapping, overwriting any old value
func (sd StructuredData) InsertTuple(sdID string, paramID string, value string) {
	sd.Entry(sdID)[paramID] = value
}

// FindTuple looks up a value by (SD-ID, param) pair
func (sd StructuredData) FindTuple(sdID string, paramID string) (string, bool) {
	params, ok := sd[sdID]
	if !ok {
		return "", false
	}
	value, ok := params[paramID]
	return value, ok
}

// FindSDID looks up all param/value mappings for a given SD-ID
func (sd StructuredData) FindSDID(sdID string) (SDParams, bool) {
	params, ok := sd[sdID]
	return params, ok
}

// Len counts the distinct SD-IDs
func (sd StructuredData) Len() int {
	return len(sd)
}

// IsEmpty tells whether there are no elements at all
func (sd StructuredData) IsEmpty() bool {
	return len(sd) == 0
}

// SDIDs lists the SD-IDs in lexical order
func (sd StructuredData) SDIDs() []string {
	ids := maps.Keys(sd)
	slices.Sort(ids)
	return ids
}

// EncodeMsgpack encodes the container as a map of maps with lexically ordered keys,
// so the same content always produces the same bytes
func (sd StructuredData) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(sd)); err != nil {
		return err
	}
	for _, sdID := range sd.SDIDs() {
		if err := enc.EncodeString(sdID); err != nil {
			return err
		}
		params := sd[sdID]
		if err := enc.EncodeMapLen(len(params)); err != nil {
			return err
		}
		names := maps.Keys(params)
		slices.Sort(names)
		for _, name := range names {
			if err := enc.EncodeString(name); err != nil {
				return err
			}
			if err := enc.EncodeString(params[name]); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecodeMsgpack decodes a map of maps
func (sd *StructuredData) DecodeMsgpack(dec *msgpack.Decoder) error {
	numElements, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	result := make(StructuredData, numElements)
	for i := 0; i < numElements; i++ {
		sdID, err := dec.DecodeString()
		if err != nil {
			return err
		}
		numParams, err := dec.DecodeMapLen()
		if err != nil {
			return err
		}
		params := make(SDParams, numParams)
		for j := 0; j < numParams; j++ {
			name, err := dec.DecodeString()
			if err != nil {
				return err
			}
			value, err := dec.DecodeString()
			if err != nil {
				return err
			}
			params[name] = value
		}
		result[sdID] = params
	}
	*sd = result
	return nil
}
