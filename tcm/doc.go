// Package tcm reads and writes TCM (tcbot macro) replay files.
//
// A TCM file is a fixed 16-byte magic header, a 64-byte metadata block and a
// version-specific input stream:
//   - version 1: varint count, then (varint frame, control byte) records, then 0xCC
//   - version 2: varint start frame, then a bit-packed action stream that runs
//     until end of file, with frame deltas compressed against the previous delta
//
// Deserialize detects the version from the metadata block and returns a
// DynamicReplay; DeserializeV1 and DeserializeV2 decode a known version.
// Replays convert between versions with ToV1 and ToV2. Writer and the
// recorder subpackage build replays incrementally.
package tcm
