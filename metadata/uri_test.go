package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	cidV0 = "QmT78zSuBmuS4z925WZfrqQ1qHaJ56DQaTfyMUF7F8ff5o"
	cidV1 = "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"
)

func TestIsCID(t *testing.T) {
	require.True(t, IsCID(cidV0))
	require.True(t, IsCID(cidV1))
	require.False(t, IsCID("Qm"+"0000000000000000000000000000000000000000000O"))
	require.False(t, IsCID("hello"))
	require.False(t, IsCID("b"+"UPPERCASEISNOTBASE32LOWERUPPERCASEISNOTBASE32LOWER"))
}

func TestNormalizeURI(t *testing.T) {
	g := Gateway{
		IPFS:    "https://gw.example.com/",
		Arweave: "https://ar.example.com",
		Buckets: map[string]string{"s3": "https://cdn.example.com"},
	}
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"ipfs://" + cidV1 + "/file.png", "https://gw.example.com/ipfs/" + cidV1 + "/file.png"},
		{"ipfs://ipfs/" + cidV0, "https://gw.example.com/ipfs/" + cidV0},
		{"IPFS://" + cidV0, "https://gw.example.com/ipfs/" + cidV0},
		{cidV0, "https://gw.example.com/ipfs/" + cidV0},
		{cidV1 + "/meta.json", "https://gw.example.com/ipfs/" + cidV1 + "/meta.json"},
		{"/ipfs/" + cidV0, "https://gw.example.com/ipfs/" + cidV0},
		{"ar://abc123", "https://ar.example.com/abc123"},
		{"s3://assets/img/1.png", "https://cdn.example.com/img/1.png"},
		{"oss://assets/img/1.png", "oss://assets/img/1.png"},
		{"https://example.com/a.png", "https://example.com/a.png"},
		{"data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
		{"not a uri", "not a uri"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := g.NormalizeURI(tt.in)
			require.Equal(t, tt.want, got)
			require.Equal(t, got, g.NormalizeURI(got), "normalization must be idempotent")
		})
	}
}

func TestNormalizeURIDefaultGateway(t *testing.T) {
	require.Equal(t, "https://ipfs.io/ipfs/"+cidV1+"/file.png", Gateway{}.NormalizeURI("ipfs://"+cidV1+"/file.png"))
}

func TestBucketRef(t *testing.T) {
	scheme, bucket, key, ok := BucketRef("S3://my-bucket/meta/1.json")
	require.True(t, ok)
	require.Equal(t, "s3", scheme)
	require.Equal(t, "my-bucket", bucket)
	require.Equal(t, "meta/1.json", key)

	_, _, _, ok = BucketRef("https://example.com/1.json")
	require.False(t, ok)
	_, _, _, ok = BucketRef("s3://bucket-only")
	require.False(t, ok)
}
