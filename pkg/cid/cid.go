// Package cid derives the identifiers used to address containers and the
// resources of a sharding operation. Every function is a pure function of
// its arguments.
package cid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// StrlenCid is the length of a container id in hexadecimal characters.
const StrlenCid = 64

const shardAccountPrefix = ".shards_"

// FromName computes the container id of account/reference: the uppercase
// hexadecimal SHA-256 of the account, a NUL byte and the reference.
func FromName(account, reference string) string {
	h := sha256.New()
	h.Write([]byte(account))
	h.Write([]byte{0})
	h.Write([]byte(reference))
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}

// IsHexa reports whether s is made of hexadecimal characters only and,
// when size is positive, is exactly size characters long.
func IsHexa(s string, size int) bool {
	if size > 0 && len(s) != size {
		return false
	}
	if len(s)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// ShardAccount is the account hosting the shards of rootAccount.
func ShardAccount(rootAccount string) string {
	return shardAccountPrefix + rootAccount
}

func ShardContainer(rootContainer, parentCid string, timestamp int64, index int) string {
	return fmt.Sprintf("%s-%s-%d-%d", rootContainer, parentCid, timestamp, index)
}

// ShardingTube names the work-queue channel of one sharding epoch.
func ShardingTube(rootCid string, timestamp int64) string {
	return fmt.Sprintf("%s.sharding-%d", rootCid, timestamp)
}
