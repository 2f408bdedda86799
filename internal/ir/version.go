package ir

// ToolVersion is the tsq release version, reported by `tsq --version`.
const ToolVersion = "0.1.0"
