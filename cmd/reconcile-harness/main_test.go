package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRunConverges(t *testing.T) {
	input := strings.Join([]string{
		"3,100,0101010101010101",
		"3,200,0202020202020202",
		"1,300,0303030303030303", // initiator only
		"2,400,0404040404040404", // responder only
	}, "\n") + "\n"

	var out bytes.Buffer
	err := run(strings.NewReader(input), &out, 8, 0, zaptest.NewLogger(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.ElementsMatch(t, []string{
		"xor,HAVE,0303030303030303",
		"xor,NEED,0404040404040404",
	}, lines)
}

func TestRunRejectsBadIDSize(t *testing.T) {
	input := "1,100,0101\n" // 2-byte id, idSize expects 8
	var out bytes.Buffer
	err := run(strings.NewReader(input), &out, 8, 0, zaptest.NewLogger(t))
	require.Error(t, err)
}

func TestParseRecord(t *testing.T) {
	mode, ts, id, err := parseRecord("3,1234,aabbccdd", 4)
	require.NoError(t, err)
	require.Equal(t, 3, mode)
	require.Equal(t, uint64(1234), ts)
	require.Equal(t, []byte{0xaa, 0xbb, 0xcc, 0xdd}, id)

	_, _, _, err = parseRecord("not,a,record,at,all", 4)
	require.Error(t, err)

	_, _, _, err = parseRecord("3,1234,zz", 4)
	require.Error(t, err)
}
