package capability

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// TypeInfo is the static metadata of one compiled type: its name, declared
// supertype and directly implemented interfaces. Nothing here requires
// loading or running the artifact.
type TypeInfo struct {
	Name       string
	Super      string
	Interfaces []string
	Interface  bool
}

const classMagic = 0xCAFEBABE

const accInterface = 0x0200

// constant pool tags (JVM spec §4.4).
const (
	cpUtf8               = 1
	cpInteger            = 3
	cpFloat              = 4
	cpLong               = 5
	cpDouble             = 6
	cpClass              = 7
	cpString             = 8
	cpFieldref           = 9
	cpMethodref          = 10
	cpInterfaceMethodref = 11
	cpNameAndType        = 12
	cpMethodHandle       = 15
	cpMethodType         = 16
	cpDynamic            = 17
	cpInvokeDynamic      = 18
	cpModule             = 19
	cpPackage            = 20
)

type classReader struct {
	data []byte
	pos  int
}

func (r *classReader) u1() (uint8, error) {
	if r.pos+1 > len(r.data) {
		return 0, fmt.Errorf("truncated class file at offset %d", r.pos)
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *classReader) u2() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, fmt.Errorf("truncated class file at offset %d", r.pos)
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *classReader) u4() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("truncated class file at offset %d", r.pos)
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *classReader) skip(n int) error {
	if r.pos+n > len(r.data) {
		return fmt.Errorf("truncated class file at offset %d", r.pos)
	}
	r.pos += n
	return nil
}

// ParseClassFile extracts TypeInfo from compiled class-file bytes. It reads
// the constant pool only as far as needed to resolve the this/super/interface
// names and never interprets code attributes.
func ParseClassFile(data []byte) (*TypeInfo, error) {
	r := &classReader{data: data}

	magic, err := r.u4()
	if err != nil {
		return nil, err
	}
	if magic != classMagic {
		return nil, fmt.Errorf("not a class file (magic 0x%08X)", magic)
	}
	if err := r.skip(4); err != nil { // minor + major version
		return nil, err
	}

	poolCount, err := r.u2()
	if err != nil {
		return nil, err
	}

	// utf8[i] holds Utf8 entries, classNameIdx[i] holds the name index of
	// Class entries. Long/Double occupy two pool slots.
	utf8 := make(map[uint16]string)
	classNameIdx := make(map[uint16]uint16)

	for i := uint16(1); i < poolCount; i++ {
		tag, err := r.u1()
		if err != nil {
			return nil, err
		}
		switch tag {
		case cpUtf8:
			length, err := r.u2()
			if err != nil {
				return nil, err
			}
			if r.pos+int(length) > len(r.data) {
				return nil, fmt.Errorf("truncated utf8 constant at offset %d", r.pos)
			}
			utf8[i] = string(r.data[r.pos : r.pos+int(length)])
			r.pos += int(length)
		case cpClass:
			idx, err := r.u2()
			if err != nil {
				return nil, err
			}
			classNameIdx[i] = idx
		case cpString, cpMethodType, cpModule, cpPackage:
			if err := r.skip(2); err != nil {
				return nil, err
			}
		case cpMethodHandle:
			if err := r.skip(3); err != nil {
				return nil, err
			}
		case cpInteger, cpFloat, cpFieldref, cpMethodref, cpInterfaceMethodref,
			cpNameAndType, cpDynamic, cpInvokeDynamic:
			if err := r.skip(4); err != nil {
				return nil, err
			}
		case cpLong, cpDouble:
			if err := r.skip(8); err != nil {
				return nil, err
			}
			i++ // occupies two slots
		default:
			return nil, fmt.Errorf("unknown constant pool tag %d at entry %d", tag, i)
		}
	}

	accessFlags, err := r.u2()
	if err != nil {
		return nil, err
	}
	thisClass, err := r.u2()
	if err != nil {
		return nil, err
	}
	superClass, err := r.u2()
	if err != nil {
		return nil, err
	}

	className := func(classIdx uint16) string {
		nameIdx, ok := classNameIdx[classIdx]
		if !ok {
			return ""
		}
		return strings.ReplaceAll(utf8[nameIdx], "/", ".")
	}

	info := &TypeInfo{
		Name:      className(thisClass),
		Interface: accessFlags&accInterface != 0,
	}
	if info.Name == "" {
		return nil, fmt.Errorf("class file has no resolvable this_class name")
	}
	if superClass != 0 {
		info.Super = className(superClass)
	}

	ifaceCount, err := r.u2()
	if err != nil {
		return nil, err
	}
	for j := uint16(0); j < ifaceCount; j++ {
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		if name := className(idx); name != "" {
			info.Interfaces = append(info.Interfaces, name)
		}
	}

	return info, nil
}
