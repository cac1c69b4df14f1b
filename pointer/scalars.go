package pointer

// Scalar accessors. X reads at the pointer address, XAt at a byte offset and
// XAtIndex at index*sizeof(X). Array forms bounds-check the whole transfer
// before touching memory.

// Int8 reads an int8 at the pointer address.
func (p *Pointer) Int8() (int8, error) { return load[int8](p, 0) }

// Int8At reads an int8 at byte offset off.
func (p *Pointer) Int8At(off int64) (int8, error) { return load[int8](p, off) }

// Int8AtIndex reads an int8 at element i, offset i*sizeof(int8).
func (p *Pointer) Int8AtIndex(i int64) (int8, error) { return loadIndex[int8](p, i) }

// SetInt8 writes v as an int8 at the pointer address.
func (p *Pointer) SetInt8(v int8) error { return store(p, 0, v) }

// SetInt8At writes v as an int8 at byte offset off.
func (p *Pointer) SetInt8At(off int64, v int8) error { return store(p, off, v) }

// SetInt8AtIndex writes v as an int8 at element i, offset i*sizeof(int8).
func (p *Pointer) SetInt8AtIndex(i int64, v int8) error { return storeIndex(p, i, v) }

// Int8s reads n consecutive int8 values at the pointer address.
func (p *Pointer) Int8s(n uint64) ([]int8, error) { return loadSlice[int8](p, 0, n) }

// Int8sAt reads n consecutive int8 values at off.
func (p *Pointer) Int8sAt(off int64, n uint64) ([]int8, error) { return loadSlice[int8](p, off, n) }

// SetInt8s writes vals as consecutive int8 values at the pointer address.
func (p *Pointer) SetInt8s(vals []int8) error { return storeSlice(p, 0, vals) }

// SetInt8sAt writes vals as consecutive int8 values at off.
func (p *Pointer) SetInt8sAt(off int64, vals []int8) error { return storeSlice(p, off, vals) }

// Uint8 reads an uint8 at the pointer address.
func (p *Pointer) Uint8() (uint8, error) { return load[uint8](p, 0) }

// Uint8At reads an uint8 at byte offset off.
func (p *Pointer) Uint8At(off int64) (uint8, error) { return load[uint8](p, off) }

// Uint8AtIndex reads an uint8 at element i, offset i*sizeof(uint8).
func (p *Pointer) Uint8AtIndex(i int64) (uint8, error) { return loadIndex[uint8](p, i) }

// SetUint8 writes v as an uint8 at the pointer address.
func (p *Pointer) SetUint8(v uint8) error { return store(p, 0, v) }

// SetUint8At writes v as an uint8 at byte offset off.
func (p *Pointer) SetUint8At(off int64, v uint8) error { return store(p, off, v) }

// SetUint8AtIndex writes v as an uint8 at element i, offset i*sizeof(uint8).
func (p *Pointer) SetUint8AtIndex(i int64, v uint8) error { return storeIndex(p, i, v) }

// Uint8s reads n consecutive uint8 values at the pointer address.
func (p *Pointer) Uint8s(n uint64) ([]uint8, error) { return loadSlice[uint8](p, 0, n) }

// Uint8sAt reads n consecutive uint8 values at off.
func (p *Pointer) Uint8sAt(off int64, n uint64) ([]uint8, error) { return loadSlice[uint8](p, off, n) }

// SetUint8s writes vals as consecutive uint8 values at the pointer address.
func (p *Pointer) SetUint8s(vals []uint8) error { return storeSlice(p, 0, vals) }

// SetUint8sAt writes vals as consecutive uint8 values at off.
func (p *Pointer) SetUint8sAt(off int64, vals []uint8) error { return storeSlice(p, off, vals) }

// Int16 reads an int16 at the pointer address.
func (p *Pointer) Int16() (int16, error) { return load[int16](p, 0) }

// Int16At reads an int16 at byte offset off.
func (p *Pointer) Int16At(off int64) (int16, error) { return load[int16](p, off) }

// Int16AtIndex reads an int16 at element i, offset i*sizeof(int16).
func (p *Pointer) Int16AtIndex(i int64) (int16, error) { return loadIndex[int16](p, i) }

// SetInt16 writes v as an int16 at the pointer address.
func (p *Pointer) SetInt16(v int16) error { return store(p, 0, v) }

// SetInt16At writes v as an int16 at byte offset off.
func (p *Pointer) SetInt16At(off int64, v int16) error { return store(p, off, v) }

// SetInt16AtIndex writes v as an int16 at element i, offset i*sizeof(int16).
func (p *Pointer) SetInt16AtIndex(i int64, v int16) error { return storeIndex(p, i, v) }

// Int16s reads n consecutive int16 values at the pointer address.
func (p *Pointer) Int16s(n uint64) ([]int16, error) { return loadSlice[int16](p, 0, n) }

// Int16sAt reads n consecutive int16 values at off.
func (p *Pointer) Int16sAt(off int64, n uint64) ([]int16, error) { return loadSlice[int16](p, off, n) }

// SetInt16s writes vals as consecutive int16 values at the pointer address.
func (p *Pointer) SetInt16s(vals []int16) error { return storeSlice(p, 0, vals) }

// SetInt16sAt writes vals as consecutive int16 values at off.
func (p *Pointer) SetInt16sAt(off int64, vals []int16) error { return storeSlice(p, off, vals) }

// Uint16 reads an uint16 at the pointer address.
func (p *Pointer) Uint16() (uint16, error) { return load[uint16](p, 0) }

// Uint16At reads an uint16 at byte offset off.
func (p *Pointer) Uint16At(off int64) (uint16, error) { return load[uint16](p, off) }

// Uint16AtIndex reads an uint16 at element i, offset i*sizeof(uint16).
func (p *Pointer) Uint16AtIndex(i int64) (uint16, error) { return loadIndex[uint16](p, i) }

// SetUint16 writes v as an uint16 at the pointer address.
func (p *Pointer) SetUint16(v uint16) error { return store(p, 0, v) }

// SetUint16At writes v as an uint16 at byte offset off.
func (p *Pointer) SetUint16At(off int64, v uint16) error { return store(p, off, v) }

// SetUint16AtIndex writes v as an uint16 at element i, offset i*sizeof(uint16).
func (p *Pointer) SetUint16AtIndex(i int64, v uint16) error { return storeIndex(p, i, v) }

// Uint16s reads n consecutive uint16 values at the pointer address.
func (p *Pointer) Uint16s(n uint64) ([]uint16, error) { return loadSlice[uint16](p, 0, n) }

// Uint16sAt reads n consecutive uint16 values at off.
func (p *Pointer) Uint16sAt(off int64, n uint64) ([]uint16, error) { return loadSlice[uint16](p, off, n) }

// SetUint16s writes vals as consecutive uint16 values at the pointer address.
func (p *Pointer) SetUint16s(vals []uint16) error { return storeSlice(p, 0, vals) }

// SetUint16sAt writes vals as consecutive uint16 values at off.
func (p *Pointer) SetUint16sAt(off int64, vals []uint16) error { return storeSlice(p, off, vals) }

// Int32 reads an int32 at the pointer address.
func (p *Pointer) Int32() (int32, error) { return load[int32](p, 0) }

// Int32At reads an int32 at byte offset off.
func (p *Pointer) Int32At(off int64) (int32, error) { return load[int32](p, off) }

// Int32AtIndex reads an int32 at element i, offset i*sizeof(int32).
func (p *Pointer) Int32AtIndex(i int64) (int32, error) { return loadIndex[int32](p, i) }

// SetInt32 writes v as an int32 at the pointer address.
func (p *Pointer) SetInt32(v int32) error { return store(p, 0, v) }

// SetInt32At writes v as an int32 at byte offset off.
func (p *Pointer) SetInt32At(off int64, v int32) error { return store(p, off, v) }

// SetInt32AtIndex writes v as an int32 at element i, offset i*sizeof(int32).
func (p *Pointer) SetInt32AtIndex(i int64, v int32) error { return storeIndex(p, i, v) }

// Int32s reads n consecutive int32 values at the pointer address.
func (p *Pointer) Int32s(n uint64) ([]int32, error) { return loadSlice[int32](p, 0, n) }

// Int32sAt reads n consecutive int32 values at off.
func (p *Pointer) Int32sAt(off int64, n uint64) ([]int32, error) { return loadSlice[int32](p, off, n) }

// SetInt32s writes vals as consecutive int32 values at the pointer address.
func (p *Pointer) SetInt32s(vals []int32) error { return storeSlice(p, 0, vals) }

// SetInt32sAt writes vals as consecutive int32 values at off.
func (p *Pointer) SetInt32sAt(off int64, vals []int32) error { return storeSlice(p, off, vals) }

// Uint32 reads an uint32 at the pointer address.
func (p *Pointer) Uint32() (uint32, error) { return load[uint32](p, 0) }

// Uint32At reads an uint32 at byte offset off.
func (p *Pointer) Uint32At(off int64) (uint32, error) { return load[uint32](p, off) }

// Uint32AtIndex reads an uint32 at element i, offset i*sizeof(uint32).
func (p *Pointer) Uint32AtIndex(i int64) (uint32, error) { return loadIndex[uint32](p, i) }

// SetUint32 writes v as an uint32 at the pointer address.
func (p *Pointer) SetUint32(v uint32) error { return store(p, 0, v) }

// SetUint32At writes v as an uint32 at byte offset off.
func (p *Pointer) SetUint32At(off int64, v uint32) error { return store(p, off, v) }

// SetUint32AtIndex writes v as an uint32 at element i, offset i*sizeof(uint32).
func (p *Pointer) SetUint32AtIndex(i int64, v uint32) error { return storeIndex(p, i, v) }

// Uint32s reads n consecutive uint32 values at the pointer address.
func (p *Pointer) Uint32s(n uint64) ([]uint32, error) { return loadSlice[uint32](p, 0, n) }

// Uint32sAt reads n consecutive uint32 values at off.
func (p *Pointer) Uint32sAt(off int64, n uint64) ([]uint32, error) { return loadSlice[uint32](p, off, n) }

// SetUint32s writes vals as consecutive uint32 values at the pointer address.
func (p *Pointer) SetUint32s(vals []uint32) error { return storeSlice(p, 0, vals) }

// SetUint32sAt writes vals as consecutive uint32 values at off.
func (p *Pointer) SetUint32sAt(off int64, vals []uint32) error { return storeSlice(p, off, vals) }

// Int64 reads an int64 at the pointer address.
func (p *Pointer) Int64() (int64, error) { return load[int64](p, 0) }

// Int64At reads an int64 at byte offset off.
func (p *Pointer) Int64At(off int64) (int64, error) { return load[int64](p, off) }

// Int64AtIndex reads an int64 at element i, offset i*sizeof(int64).
func (p *Pointer) Int64AtIndex(i int64) (int64, error) { return loadIndex[int64](p, i) }

// SetInt64 writes v as an int64 at the pointer address.
func (p *Pointer) SetInt64(v int64) error { return store(p, 0, v) }

// SetInt64At writes v as an int64 at byte offset off.
func (p *Pointer) SetInt64At(off int64, v int64) error { return store(p, off, v) }

// SetInt64AtIndex writes v as an int64 at element i, offset i*sizeof(int64).
func (p *Pointer) SetInt64AtIndex(i int64, v int64) error { return storeIndex(p, i, v) }

// Int64s reads n consecutive int64 values at the pointer address.
func (p *Pointer) Int64s(n uint64) ([]int64, error) { return loadSlice[int64](p, 0, n) }

// Int64sAt reads n consecutive int64 values at off.
func (p *Pointer) Int64sAt(off int64, n uint64) ([]int64, error) { return loadSlice[int64](p, off, n) }

// SetInt64s writes vals as consecutive int64 values at the pointer address.
func (p *Pointer) SetInt64s(vals []int64) error { return storeSlice(p, 0, vals) }

// SetInt64sAt writes vals as consecutive int64 values at off.
func (p *Pointer) SetInt64sAt(off int64, vals []int64) error { return storeSlice(p, off, vals) }

// Uint64 reads an uint64 at the pointer address.
func (p *Pointer) Uint64() (uint64, error) { return load[uint64](p, 0) }

// Uint64At reads an uint64 at byte offset off.
func (p *Pointer) Uint64At(off int64) (uint64, error) { return load[uint64](p, off) }

// Uint64AtIndex reads an uint64 at element i, offset i*sizeof(uint64).
func (p *Pointer) Uint64AtIndex(i int64) (uint64, error) { return loadIndex[uint64](p, i) }

// SetUint64 writes v as an uint64 at the pointer address.
func (p *Pointer) SetUint64(v uint64) error { return store(p, 0, v) }

// SetUint64At writes v as an uint64 at byte offset off.
func (p *Pointer) SetUint64At(off int64, v uint64) error { return store(p, off, v) }

// SetUint64AtIndex writes v as an uint64 at element i, offset i*sizeof(uint64).
func (p *Pointer) SetUint64AtIndex(i int64, v uint64) error { return storeIndex(p, i, v) }

// Uint64s reads n consecutive uint64 values at the pointer address.
func (p *Pointer) Uint64s(n uint64) ([]uint64, error) { return loadSlice[uint64](p, 0, n) }

// Uint64sAt reads n consecutive uint64 values at off.
func (p *Pointer) Uint64sAt(off int64, n uint64) ([]uint64, error) { return loadSlice[uint64](p, off, n) }

// SetUint64s writes vals as consecutive uint64 values at the pointer address.
func (p *Pointer) SetUint64s(vals []uint64) error { return storeSlice(p, 0, vals) }

// SetUint64sAt writes vals as consecutive uint64 values at off.
func (p *Pointer) SetUint64sAt(off int64, vals []uint64) error { return storeSlice(p, off, vals) }

// Float32 reads a float32 at the pointer address.
func (p *Pointer) Float32() (float32, error) { return load[float32](p, 0) }

// Float32At reads a float32 at byte offset off.
func (p *Pointer) Float32At(off int64) (float32, error) { return load[float32](p, off) }

// Float32AtIndex reads a float32 at element i, offset i*sizeof(float32).
func (p *Pointer) Float32AtIndex(i int64) (float32, error) { return loadIndex[float32](p, i) }

// SetFloat32 writes v as a float32 at the pointer address.
func (p *Pointer) SetFloat32(v float32) error { return store(p, 0, v) }

// SetFloat32At writes v as a float32 at byte offset off.
func (p *Pointer) SetFloat32At(off int64, v float32) error { return store(p, off, v) }

// SetFloat32AtIndex writes v as a float32 at element i, offset i*sizeof(float32).
func (p *Pointer) SetFloat32AtIndex(i int64, v float32) error { return storeIndex(p, i, v) }

// Float32s reads n consecutive float32 values at the pointer address.
func (p *Pointer) Float32s(n uint64) ([]float32, error) { return loadSlice[float32](p, 0, n) }

// Float32sAt reads n consecutive float32 values at off.
func (p *Pointer) Float32sAt(off int64, n uint64) ([]float32, error) { return loadSlice[float32](p, off, n) }

// SetFloat32s writes vals as consecutive float32 values at the pointer address.
func (p *Pointer) SetFloat32s(vals []float32) error { return storeSlice(p, 0, vals) }

// SetFloat32sAt writes vals as consecutive float32 values at off.
func (p *Pointer) SetFloat32sAt(off int64, vals []float32) error { return storeSlice(p, off, vals) }

// Float64 reads a float64 at the pointer address.
func (p *Pointer) Float64() (float64, error) { return load[float64](p, 0) }

// Float64At reads a float64 at byte offset off.
func (p *Pointer) Float64At(off int64) (float64, error) { return load[float64](p, off) }

// Float64AtIndex reads a float64 at element i, offset i*sizeof(float64).
func (p *Pointer) Float64AtIndex(i int64) (float64, error) { return loadIndex[float64](p, i) }

// SetFloat64 writes v as a float64 at the pointer address.
func (p *Pointer) SetFloat64(v float64) error { return store(p, 0, v) }

// SetFloat64At writes v as a float64 at byte offset off.
func (p *Pointer) SetFloat64At(off int64, v float64) error { return store(p, off, v) }

// SetFloat64AtIndex writes v as a float64 at element i, offset i*sizeof(float64).
func (p *Pointer) SetFloat64AtIndex(i int64, v float64) error { return storeIndex(p, i, v) }

// Float64s reads n consecutive float64 values at the pointer address.
func (p *Pointer) Float64s(n uint64) ([]float64, error) { return loadSlice[float64](p, 0, n) }

// Float64sAt reads n consecutive float64 values at off.
func (p *Pointer) Float64sAt(off int64, n uint64) ([]float64, error) { return loadSlice[float64](p, off, n) }

// SetFloat64s writes vals as consecutive float64 values at the pointer address.
func (p *Pointer) SetFloat64s(vals []float64) error { return storeSlice(p, 0, vals) }

// SetFloat64sAt writes vals as consecutive float64 values at off.
func (p *Pointer) SetFloat64sAt(off int64, vals []float64) error { return storeSlice(p, off, vals) }
