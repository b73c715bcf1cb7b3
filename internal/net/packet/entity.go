package packet

// FixedPoint converts a world coordinate to the 1/32-block integer used by
// protocol 47 entity positions. The fraction is truncated toward zero.
func FixedPoint(v float64) int32 {
	return int32(v * 32)
}

// BuildSpawnMob builds S_OPCODE_SPAWN_MOB with zero rotation and velocity.
func BuildSpawnMob(entityID int32, mobType byte, x, y, z float64, meta *Metadata) []byte {
	w := NewWriterWithID(S_OPCODE_SPAWN_MOB)
	w.WriteVarInt(entityID)
	w.WriteUint8(mobType)
	w.WriteInt32(FixedPoint(x))
	w.WriteInt32(FixedPoint(y))
	w.WriteInt32(FixedPoint(z))
	w.WriteUint8(0) // yaw
	w.WriteUint8(0) // pitch
	w.WriteUint8(0) // head pitch
	w.WriteInt16(0) // velocity x
	w.WriteInt16(0) // velocity y
	w.WriteInt16(0) // velocity z
	w.WriteMetadata(meta)
	return w.Bytes()
}

// BuildEntityMetadata builds S_OPCODE_ENTITY_METADATA.
func BuildEntityMetadata(entityID int32, meta *Metadata) []byte {
	w := NewWriterWithID(S_OPCODE_ENTITY_METADATA)
	w.WriteVarInt(entityID)
	w.WriteMetadata(meta)
	return w.Bytes()
}

// BuildEntityTeleport builds S_OPCODE_ENTITY_TELEPORT.
func BuildEntityTeleport(entityID int32, x, y, z float64, yaw, pitch float32, onGround bool) []byte {
	w := NewWriterWithID(S_OPCODE_ENTITY_TELEPORT)
	w.WriteVarInt(entityID)
	w.WriteInt32(FixedPoint(x))
	w.WriteInt32(FixedPoint(y))
	w.WriteInt32(FixedPoint(z))
	w.WriteAngle(yaw)
	w.WriteAngle(pitch)
	w.WriteBool(onGround)
	return w.Bytes()
}

// BuildDestroyEntities builds S_OPCODE_DESTROY_ENTITIES for one or more IDs.
func BuildDestroyEntities(entityIDs ...int32) []byte {
	w := NewWriterWithID(S_OPCODE_DESTROY_ENTITIES)
	w.WriteVarInt(int32(len(entityIDs)))
	for _, id := range entityIDs {
		w.WriteVarInt(id)
	}
	return w.Bytes()
}
