package bedrock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildClient_SameKeyConcurrent_ReturnsSameInstance(t *testing.T) {
	t.Parallel()

	c := NewClient()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	creds := Credentials{
		AccessKey: "AKIA_TEST",
		SecretKey: "SECRET_TEST",
		Region:    "us-east-1",
	}

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)

	runtimeClients := make([]Runtime, goroutines)

	for i := 0; i < goroutines; i++ {
		i := i
		go func() {
			defer wg.Done()
			rt, err := c.BuildClient(ctx, creds)
			if err != nil {
				t.Errorf("BuildClient failed: %v", err)
				return
			}
			runtimeClients[i] = rt
		}()
	}

	wg.Wait()

	first := runtimeClients[0]
	require.NotNil(t, first)
	for i := 1; i < goroutines; i++ {
		assert.Same(t, first, runtimeClients[i], "expected same runtime client instance for identical keys")
	}
}

func TestBuildClient_DifferentKeys_ReturnDifferentInstances(t *testing.T) {
	t.Parallel()

	c := NewClient()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rt1, err := c.BuildClient(ctx, Credentials{AccessKey: "AKIA_TEST", SecretKey: "SECRET_TEST", Region: "us-east-1"})
	require.NoError(t, err)
	rt2, err := c.BuildClient(ctx, Credentials{AccessKey: "AKIA_TEST", SecretKey: "SECRET_TEST", Region: "us-east-2"})
	require.NoError(t, err)

	assert.NotSame(t, rt1, rt2, "expected different instances for different regions")
}

func TestBuildClient_DefaultRegion(t *testing.T) {
	c := NewClient()

	rt1, err := c.BuildClient(context.Background(), Credentials{AccessKey: "AKIA_TEST", SecretKey: "S"})
	require.NoError(t, err)
	rt2, err := c.BuildClient(context.Background(), Credentials{AccessKey: "AKIA_TEST", SecretKey: "S", Region: DefaultRegion})
	require.NoError(t, err)

	assert.Same(t, rt1, rt2)
}
