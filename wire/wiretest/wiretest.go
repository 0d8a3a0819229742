// Package wiretest builds deterministic blocks and transactions for tests.
package wiretest

import (
	"github.com/bitfsorg/libcryptonote-go/fork"
	"github.com/bitfsorg/libcryptonote-go/wire"
)

// Hash returns a hash with every byte set to seed.
func Hash(seed byte) wire.Hash {
	var h wire.Hash
	for i := range h {
		h[i] = seed
	}
	return h
}

// Key returns a public key with every byte set to seed.
func Key(seed byte) wire.PublicKey { return wire.PublicKey(Hash(seed)) }

func rctKey(seed byte) wire.Key { return wire.Key(Hash(seed)) }

func rctKeys(n int, seed byte) []wire.Key {
	out := make([]wire.Key, n)
	for i := range out {
		out[i] = rctKey(seed + byte(i))
	}
	return out
}

// CoinbaseExtra returns an extra holding a public key and a nonce of
// nonceSize zero bytes.
func CoinbaseExtra(nonceSize int) []byte {
	extra := wire.AppendPubKeyToExtra(nil, Key(0x11))
	if nonceSize > 0 {
		extra, _ = wire.AppendNonceToExtra(extra, make([]byte, nonceSize))
	}
	return extra
}

// Coinbase returns a miner transaction paying amount at height.
func Coinbase(version, height, amount uint64, extra []byte) wire.Transaction {
	return wire.Transaction{
		TransactionPrefix: wire.TransactionPrefix{
			Version:    version,
			UnlockTime: height + 60,
			Inputs:     []wire.TxIn{wire.TxInGen{Height: height}},
			Outputs:    []wire.TxOut{{Amount: amount, Target: wire.TxOutToKey{Key: Key(0x22)}}},
			Extra:      extra,
		},
	}
}

// V1Transfer returns a version 1 transaction with one input of the given
// ring size and two outputs.
func V1Transfer(ring int) wire.Transaction {
	offsets := make([]uint64, ring)
	for i := range offsets {
		offsets[i] = uint64(i*7 + 1)
	}
	sigs := make([]wire.Signature, ring)
	for i := range sigs {
		sigs[i][0] = byte(i + 1)
		sigs[i][63] = 0xee
	}
	return wire.Transaction{
		TransactionPrefix: wire.TransactionPrefix{
			Version: wire.TxVersion1,
			Inputs: []wire.TxIn{wire.TxInToKey{
				Amount:     1000,
				KeyOffsets: offsets,
				KeyImage:   wire.KeyImage(Hash(0x33)),
			}},
			Outputs: []wire.TxOut{
				{Amount: 600, Target: wire.TxOutToKey{Key: Key(0x44)}},
				{Amount: 390, Target: wire.TxOutToKey{Key: Key(0x55)}},
			},
			Extra: wire.AppendPubKeyToExtra(nil, Key(0x66)),
		},
		Signatures: [][]wire.Signature{sigs},
	}
}

// RctTransfer returns a version 2 transaction of type t with the given
// number of inputs, outputs and ring size.
func RctTransfer(t wire.RctType, inputs, outputs, ring int) wire.Transaction {
	tx := wire.Transaction{
		TransactionPrefix: wire.TransactionPrefix{
			Version: wire.TxVersion2,
			Extra:   wire.AppendPubKeyToExtra(nil, Key(0x77)),
		},
	}
	for i := 0; i < inputs; i++ {
		offsets := make([]uint64, ring)
		for j := range offsets {
			offsets[j] = uint64(j + 1)
		}
		tx.Inputs = append(tx.Inputs, wire.TxInToKey{KeyOffsets: offsets, KeyImage: wire.KeyImage(Hash(byte(0x80 + i)))})
	}
	for i := 0; i < outputs; i++ {
		tx.Outputs = append(tx.Outputs, wire.TxOut{Target: wire.TxOutToKey{Key: Key(byte(0x90 + i))}})
	}

	s := &tx.RCT
	s.Type = t
	if t == wire.RctTypeNull {
		return tx
	}
	s.TxnFee = 12345
	if t == wire.RctTypeSimple {
		s.PseudoOuts = rctKeys(inputs, 0x10)
	}
	s.EcdhInfo = make([]wire.EcdhTuple, outputs)
	for i := range s.EcdhInfo {
		s.EcdhInfo[i].Amount[0] = byte(i + 1)
		if t != wire.RctTypeBulletproof2 && t != wire.RctTypeCLSAG && t != wire.RctTypeBulletproofPlus {
			s.EcdhInfo[i].Mask = rctKey(byte(0xa0 + i))
			s.EcdhInfo[i].Amount = rctKey(byte(0xb0 + i))
		}
	}
	s.OutPk = rctKeys(outputs, 0x20)

	p := &s.Prunable
	switch t {
	case wire.RctTypeFull, wire.RctTypeSimple:
		p.RangeSigs = make([]wire.RangeSig, outputs)
		for i := range p.RangeSigs {
			p.RangeSigs[i].Asig.Ee = rctKey(byte(0x30 + i))
			p.RangeSigs[i].Ci[63] = rctKey(0x31)
		}
	case wire.RctTypeBulletproofPlus:
		p.BulletproofsPlus = []wire.BulletproofPlus{{
			A: rctKey(1), A1: rctKey(2), B: rctKey(3), R1: rctKey(4), S1: rctKey(5), D1: rctKey(6),
			L: rctKeys(6, 0x40), R: rctKeys(6, 0x50),
		}}
	default:
		p.Bulletproofs = []wire.Bulletproof{{
			A: rctKey(1), S: rctKey(2), T1: rctKey(3), T2: rctKey(4), Taux: rctKey(5), Mu: rctKey(6),
			L: rctKeys(7, 0x40), R: rctKeys(7, 0x50),
			Aa: rctKey(7), B: rctKey(8), T: rctKey(9),
		}}
	}

	switch t {
	case wire.RctTypeCLSAG, wire.RctTypeBulletproofPlus:
		p.CLSAGs = make([]wire.Clsag, inputs)
		for i := range p.CLSAGs {
			p.CLSAGs[i] = wire.Clsag{S: rctKeys(ring, 0x60), C1: rctKey(0x70), D: rctKey(0x71)}
		}
	case wire.RctTypeFull:
		p.MGs = []wire.MgSig{{SS: matrix(ring, inputs+1), CC: rctKey(0x72)}}
	default:
		p.MGs = make([]wire.MgSig, inputs)
		for i := range p.MGs {
			p.MGs[i] = wire.MgSig{SS: matrix(ring, 2), CC: rctKey(0x73)}
		}
	}

	if t != wire.RctTypeFull && t != wire.RctTypeSimple {
		p.PseudoOuts = rctKeys(inputs, 0x74)
	}
	return tx
}

func matrix(rows, cols int) [][]wire.Key {
	m := make([][]wire.Key, rows)
	for i := range m {
		m[i] = rctKeys(cols, byte(i*cols))
	}
	return m
}

// Block returns a well-formed block for profile p with txCount declared
// transaction hashes.
func Block(p *fork.Profile, txCount int) *wire.Block {
	b := &wire.Block{
		BlockHeader: wire.BlockHeader{
			MajorVersion: 7,
			MinorVersion: 7,
			Timestamp:    1_600_000_000,
			PrevID:       Hash(0x01),
			Nonce:        0xdeadbeef,
		},
		MinerTx: Coinbase(wire.TxVersion2, 123456, 17_000_000_000_000, CoinbaseExtra(8)),
	}
	if p.NonceSize == 8 {
		b.Nonce = 0x0102030405060708
	}
	if p.HasCycle() {
		b.Cycle = make([]uint32, p.CycleLength)
		for i := range b.Cycle {
			b.Cycle[i] = uint32(i*1000 + 1)
		}
	}
	if p.HasNonce8 {
		b.Nonce8 = 0x1122334455667788
	}
	if p.HasUncle {
		b.Uncle = Hash(0x0f)
	}
	if p.PricingRecord {
		b.PricingRecord.XUSD = 1_000_000_000_000
		b.PricingRecord.XBTC = 42
		b.PricingRecord.Signature[0] = 0x5a
	}
	if p.LokiPrefix {
		b.MinerTx.Version = wire.LokiVersionPerOutputUnlock
		b.MinerTx.OutputUnlockTimes = []uint64{123516}
	}
	if p.Merged {
		b.Nonce = 0
		b.MajorVersion = 2
		b.Parent = wire.ParentBlock{
			MajorVersion:         1,
			MinorVersion:         0,
			PrevID:               Hash(0x02),
			Nonce:                0xcafebabe,
			NumberOfTransactions: 1,
			MinerTx:              Coinbase(wire.TxVersion1, 99, 5, wire.AppendMergeMiningTagToExtra(nil, wire.MergeMiningTag{MerkleRoot: Hash(0x03)})),
		}
	}
	for i := 0; i < txCount; i++ {
		b.TxHashes = append(b.TxHashes, Hash(byte(0xc0+i)))
	}
	return b
}

// Monero mainnet genesis block.
const (
	GenesisMinerTxHex = "013c01ff0001ffffffffffff03029b2e4c0281c0b02e7c53291a94d1d0cbff8883f8024f5142ee494ffbbd08807121017767aafcde9be00dcfd098715ebcf7f410daebc582fda69d24a28e9d0bc890d1"
	GenesisBlockHex   = "010000" + "0000000000000000000000000000000000000000000000000000000000000000" + "10270000" + GenesisMinerTxHex + "00"
	GenesisMinerTxID  = "c88ce9783b4f11190d7b9c17a69c1c52200f9faaee8e98dd07e6811175177139"
	GenesisBlockID    = "418015bb9ae982a1975da7d79277c2705727a56894ba0fb246adaabb1f4632e3"
)
