package mergemining

import "errors"

var (
	// ErrConstruction indicates a merge-mining structure could not be built,
	// usually because a block could not be hashed.
	ErrConstruction = errors.New("mergemining: construction failed")

	// ErrUnsupportedExtraTag indicates an extra field other than a public key
	// precedes the nonce in the parent miner transaction.
	ErrUnsupportedExtraTag = errors.New("mergemining: unsupported extra tag before nonce")

	// ErrNonceNotFound indicates the parent miner transaction extra has no
	// complete nonce field.
	ErrNonceNotFound = errors.New("mergemining: extra nonce not found")

	// ErrInsufficientNonceSpace indicates the extra nonce cannot hold a merge-mining tag.
	ErrInsufficientNonceSpace = errors.New("mergemining: extra nonce too small for merge mining tag")
)
