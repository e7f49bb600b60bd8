// Package config loads runtime configuration for the GymRecord CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, after loading an optional dotenv file
//     (./.env, or the file given via -e or -env).
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-u string   backend project URL
//	-k string   public API key
//	-l string   startup language
//	-d string   local database file
//	-i int      session refresh check interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "project_url": "http://127.0.0.1:54321",
//	  "anon_key": "...",
//	  "default_lang": "zh-TW",
//	  "refresh_check_interval": "30s"
//	}
//
// Secrets such as GOOGLE_CLIENT_SECRET and the storage keys are best kept in
// the dotenv file.
package config
