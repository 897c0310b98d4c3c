// Package models defines the configuration documents of the compensation plan
// as they travel over the wire.
//
// # Documents
//
// The admin panel edits four documents:
//   - PinLevel: one row of the Career Plan ladder (stored per row)
//   - CareerRules: the general rules shown above the PIN table
//   - FidelityBonusConfig: the fidelity pool and its per-level shares
//   - TopSigmaConfig: the Top SIGMA pool and its ranking weights
//   - SigmaSettings: the combined "save all" document of the SIGMA page
//
// # Conventions
//
//  1. Field names follow the JSON the admin panel has always exchanged, including
//     the snake_case PIN columns and the Portuguese fidelity keys.
//  2. Numbers are plain float64 on the wire; arithmetic happens in the
//     calculator package on decimals.
//  3. Percentages are stored as fractions (0.045) where the historical payload
//     did so, and as whole percentages (4.5) elsewhere. Each field documents
//     which one it uses.
//  4. Defaults live next to the types so the server and the settings pages
//     agree on them.
package models
