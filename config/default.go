package config

// DefaultValues is the default configuration
const DefaultValues = `
# Depth of the append-only tree; capacity is 2^Depth leaves
TreeDepth = 31

# Parent hash used by the tree: "keccak", "poseidon" or "mimc7".
# The mergedLeaves digest is always keccak256, regardless of this value.
Hasher = "keccak"

# Default sub-tree depth for sub-tree roll-ups
SubTreeDepth = 5

# Path of the sqlite file holding the split roll-up accumulators
DBPath = "/tmp/rolluptree.sqlite"

[Log]
Environment = "development" # "production" or "development"
Level = "info"
Outputs = ["stderr"]
`
