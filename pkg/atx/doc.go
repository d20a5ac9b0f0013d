// Package atx defines the ATX command codes and the table mapping
// them to timed actuations of power and reset lines.
//
// A command is exactly 4 ASCII bytes "S<target><action>", where target is
// 1..4 and action is one of:
//
//   RS  reset switch
//   PS  power switch, short press
//   PL  power switch, long press
//
// The 4 bytes are read as a big-endian 32-bit word. Any other word is a
// valid, unrecognized command which is acknowledged without side effect.
package atx
